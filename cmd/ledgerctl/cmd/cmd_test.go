package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mW "github.com/zarwallet/backend/internal/middleware"
	"github.com/zarwallet/backend/internal/models"
	"github.com/zarwallet/backend/internal/services"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flag variables are package level and survive between executions
	tokenAdmin = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEventIDCommand(t *testing.T) {
	out, err := execute(t, "event-id", "0xabc", "3")
	require.NoError(t, err)

	idx := 3
	want, err := services.EventID("0xabc", &idx)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	out, err = execute(t, "event-id", "0xabc")
	require.NoError(t, err)

	want, err = services.EventID("0xabc", nil)
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)
}

func TestEventIDCommand_RejectsBadIndex(t *testing.T) {
	_, err := execute(t, "event-id", "0xabc", "--", "-1")
	assert.ErrorIs(t, err, services.ErrInvalidEntry)

	_, err = execute(t, "event-id", "0xabc", "three")
	assert.Error(t, err)
}

func TestEventIDCommand_RequiresTxID(t *testing.T) {
	_, err := execute(t, "event-id")
	assert.Error(t, err)
}

func TestCorrectCommand_RequiresRef(t *testing.T) {
	correctionRef = ""
	_, err := execute(t, "correct", "acct-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ref")
}

func TestMigrateCommand_MemoryStore(t *testing.T) {
	viper.Set("store.driver", "memory")
	t.Cleanup(func() { viper.Set("store.driver", "") })

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")
}

func TestTokenCommand(t *testing.T) {
	viper.Set("jwt.secret_key", "cli-secret")
	t.Cleanup(func() { viper.Set("jwt.secret_key", "") })

	out, err := execute(t, "token", "ops-1", "--admin")
	require.NoError(t, err)

	claims := &mW.Claims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.UserID)
	assert.Equal(t, mW.RoleAdmin, claims.Role)
}

func TestPrintResult(t *testing.T) {
	report := &models.ReconciliationReport{
		AccountID:      "acct-1",
		Asset:          "USDT",
		OnChainBalance: "100.000000",
		Drift:          models.Drift{OnChainVsStored: "10.000000"},
		HasDrift:       true,
	}

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, "json", report))
	assert.Contains(t, buf.String(), `"onChainVsStored": "10.000000"`)
	assert.Contains(t, buf.String(), `"hasDrift": true`)

	buf.Reset()
	require.NoError(t, printResult(&buf, "yaml", report))
	assert.Contains(t, buf.String(), "accountId: acct-1")
	assert.Contains(t, buf.String(), "onChainVsStored: \"10.000000\"")
	assert.Contains(t, buf.String(), "hasDrift: true")

	assert.Error(t, printResult(&buf, "xml", report))
}
