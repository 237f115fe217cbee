package genai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGenerator_NoProviders(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()

	assert.Nil(t, CreateGenerator(context.Background(), cfg, nil))
	assert.Nil(t, CreateNuanceOracle(context.Background(), cfg, nil))
}

func TestCreateGenerator_ChainOrder(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	cfg.Providers = []Provider{ProviderCerebras, ProviderGroq, ProviderCerebras}
	cfg.Groq.APIKey = "gsk-test"
	cfg.Cerebras.APIKey = "csk-test"

	g := CreateGenerator(context.Background(), cfg, nil)
	require.NotNil(t, g)
	require.True(t, g.Enabled())

	var got []string
	for _, c := range g.chain {
		got = append(got, c.Provider().String()+"/"+c.Model())
	}
	assert.Equal(t, []string{
		"cerebras/llama-3.3-70b",
		"cerebras/llama-3.1-8b",
		"groq/llama-3.3-70b-versatile",
		"groq/llama-3.1-8b-instant",
	}, got)

	o := CreateNuanceOracle(context.Background(), cfg, nil)
	require.NotNil(t, o)
	assert.Equal(t, ProviderCerebras, o.Provider())
	assert.Equal(t, DefaultCerebrasOracleModel, o.completer.Model())
}

func TestLLMConfig_Providers(t *testing.T) {
	t.Parallel()
	cfg := DefaultLLMConfig()
	assert.False(t, cfg.HasAnyProvider())

	cfg.Groq.APIKey = "k"
	assert.True(t, cfg.HasAnyProvider())
	assert.True(t, cfg.HasProvider(ProviderGroq))
	assert.False(t, cfg.HasProvider(ProviderGemini))
	assert.False(t, cfg.HasProvider(Provider("mistral")))
	assert.Nil(t, cfg.GetProviderConfig(Provider("mistral")))
	assert.Equal(t, []Provider{ProviderGroq}, cfg.ConfiguredProviders())
}

func TestProvider_IsOpenAICompatible(t *testing.T) {
	t.Parallel()
	assert.False(t, ProviderGemini.IsOpenAICompatible())
	assert.True(t, ProviderGroq.IsOpenAICompatible())
	assert.True(t, ProviderCerebras.IsOpenAICompatible())
}

func TestNewOpenAICompleter_Errors(t *testing.T) {
	t.Parallel()

	_, err := newOpenAICompleter(ProviderGroq, "", "m")
	assert.Error(t, err)

	_, err = newOpenAICompleter(ProviderGemini, "k", "m")
	assert.Error(t, err)

	c, err := newOpenAICompleter(ProviderGroq, "k", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGroqReplyModels[0], c.Model())
}
