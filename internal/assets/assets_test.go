package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMapImages_FiltersNonMapAssets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/maps", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"displayName":"Haven","displayIcon":"haven.png","stylizedBackgroundImage":"haven_styl.png","assetPath":"/Game/Maps/Triad/Triad"},
			{"displayName":"Ascent","displayIcon":"ascent.png","assetPath":"/Game/Maps/Ascent/Ascent"},
			{"displayName":"The Range","displayIcon":"range.png","assetPath":"/Game/Poveglia/Range"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	images, err := New(srv.URL, zap.NewNop()).MapImages(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "haven_styl.png", images["Haven"], "stylized icon preferred")
	assert.Equal(t, "ascent.png", images["Ascent"], "display icon fallback")
	_, ok := images["The Range"]
	assert.False(t, ok, "non-map assets excluded")

	// Callers treat lookups as tolerant of missing entries.
	assert.Equal(t, "", images["Pearl"])
}

func TestAgents_DropsPassivesAndIconlessAbilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/agents", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("isPlayableCharacter"))
		_, _ = w.Write([]byte(`{"data":[
			{"displayName":"Sova","displayIcon":"sova.png","abilities":[
				{"displayName":"Recon Bolt","displayIcon":"recon.png","slot":"Ability1"},
				{"displayName":"Scout","displayIcon":"","slot":"Ability2"},
				{"displayName":"Uncanny Marksman","displayIcon":"p.png","slot":"Passive"}
			]}
		]}`))
	}))
	t.Cleanup(srv.Close)

	agents, err := New(srv.URL, zap.NewNop()).Agents(context.Background())
	require.NoError(t, err)

	sova := agents["Sova"]
	assert.Equal(t, "sova.png", sova.Icon)
	require.Len(t, sova.Abilities, 1)
	assert.Equal(t, "Recon Bolt", sova.Abilities[0].Name)
}

func TestGet_SurfacesHTTPFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, zap.NewNop()).MapImages(context.Background())
	require.Error(t, err)
}
