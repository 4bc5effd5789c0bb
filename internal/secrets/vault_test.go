package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGetter struct {
	values map[string]string
	calls  int
}

func (f *fakeGetter) GetSecret(_ context.Context, name string, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.calls++
	value, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, errors.New("SecretNotFound")
	}
	return azsecrets.GetSecretResponse{Secret: azsecrets.Secret{Value: &value}}, nil
}

func TestVaultClient_CachesUntilExpiry(t *testing.T) {
	getter := &fakeGetter{values: map[string]string{"JWT-SECRET": "geheim"}}
	v := newVaultClient(getter, &VaultConfig{CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		value, err := v.GetSecret(context.Background(), "JWT-SECRET")
		require.NoError(t, err)
		assert.Equal(t, "geheim", value)
	}
	assert.Equal(t, 1, getter.calls)

	now = now.Add(2 * time.Minute)
	_, err := v.GetSecret(context.Background(), "JWT-SECRET")
	require.NoError(t, err)
	assert.Equal(t, 2, getter.calls)

	v.ClearCache()
	_, err = v.GetSecret(context.Background(), "JWT-SECRET")
	require.NoError(t, err)
	assert.Equal(t, 3, getter.calls)
}

func TestVaultClient_WithoutCache(t *testing.T) {
	getter := &fakeGetter{values: map[string]string{"REDIS-PASSWORD": "pw"}}
	v := newVaultClient(getter, &VaultConfig{}, zap.NewNop())

	_, err := v.GetSecret(context.Background(), "REDIS-PASSWORD")
	require.NoError(t, err)
	_, err = v.GetSecret(context.Background(), "REDIS-PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, 2, getter.calls)
}

func TestVaultClient_MissingSecret(t *testing.T) {
	v := newVaultClient(&fakeGetter{}, &VaultConfig{CacheEnabled: true}, zap.NewNop())

	_, err := v.GetSecret(context.Background(), "UNKNOWN")
	assert.ErrorContains(t, err, "UNKNOWN")
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("KUNDEN_TEST_SECRET", "aus-env")
	p := NewEnvironmentProvider(zap.NewNop())

	value, err := p.GetSecret(context.Background(), "KUNDEN_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "aus-env", value)

	_, err = p.GetSecret(context.Background(), "KUNDEN_TEST_MISSING")
	assert.Error(t, err)

	value, err = p.GetSecretOrEnv(context.Background(), "KUNDEN-TEST-SECRET", "KUNDEN_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "aus-env", value)
	assert.False(t, p.IsVaultEnabled())
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource("", ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}
