package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/water"
)

func TestParseReading(t *testing.T) {
	base := water.DefaultMeasurements()
	tests := []struct {
		name  string
		in    string
		want  water.Measurements
		heard []water.Feature
	}{
		{
			name:  "all four in words",
			in:    "pH seven, salinity twenty, oxygen five, ammonia point five",
			want:  water.Measurements{PH: 7, Salinity: 20, DissolvedOxygen: 5, Ammonia: 0.5},
			heard: []water.Feature{water.FeaturePH, water.FeatureSalinity, water.FeatureDissolvedOxygen, water.FeatureAmmonia},
		},
		{
			name:  "decimals in words",
			in:    "P H is seven point two and dissolved oxygen three point one",
			want:  base.With(water.FeaturePH, 7.2).With(water.FeatureDissolvedOxygen, 3.1),
			heard: []water.Feature{water.FeaturePH, water.FeatureDissolvedOxygen},
		},
		{
			name:  "digits",
			in:    "Salinity: 25. DO 4.5, NH3 1.5",
			want:  base.With(water.FeatureSalinity, 25).With(water.FeatureDissolvedOxygen, 4.5).With(water.FeatureAmmonia, 1.5),
			heard: []water.Feature{water.FeatureSalinity, water.FeatureDissolvedOxygen, water.FeatureAmmonia},
		},
		{
			name:  "compound tens",
			in:    "salinity thirty two",
			want:  base.With(water.FeatureSalinity, 32),
			heard: []water.Feature{water.FeatureSalinity},
		},
		{
			name:  "two fractional digits",
			in:    "ammonia zero point two five",
			want:  base.With(water.FeatureAmmonia, 0.25),
			heard: []water.Feature{water.FeatureAmmonia},
		},
		{
			name:  "do as a verb is ignored",
			in:    "what do I do, oxygen is six",
			want:  base.With(water.FeatureDissolvedOxygen, 6),
			heard: []water.Feature{water.FeatureDissolvedOxygen},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReading(tt.in, base)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.PH, got.Measurements.PH, 1e-9)
			assert.InDelta(t, tt.want.Salinity, got.Measurements.Salinity, 1e-9)
			assert.InDelta(t, tt.want.DissolvedOxygen, got.Measurements.DissolvedOxygen, 1e-9)
			assert.InDelta(t, tt.want.Ammonia, got.Measurements.Ammonia, 1e-9)
			assert.Equal(t, tt.heard, got.Heard)
		})
	}
}

func TestParseReading_NothingHeard(t *testing.T) {
	_, err := ParseReading("the pond looks fine today", water.DefaultMeasurements())
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestResolve(t *testing.T) {
	caps, backend := Resolve(Config{}, zap.NewNop())
	assert.Equal(t, Capabilities{}, caps)
	assert.Nil(t, backend)

	caps, backend = Resolve(Config{Disabled: true, APIKey: "k"}, zap.NewNop())
	assert.False(t, caps.OutputAvailable)
	assert.Nil(t, backend)

	caps, backend = Resolve(Config{APIKey: "k"}, zap.NewNop())
	assert.Equal(t, Capabilities{InputAvailable: true, OutputAvailable: true}, caps)
	assert.NotNil(t, backend)
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	o, err := NewOpenAI(Config{APIKey: "test-key", BaseURL: server.URL + "/v1", Language: "en"})
	require.NoError(t, err)
	return o
}

func TestOpenAI_Synthesize(t *testing.T) {
	var got map[string]any
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake-mp3"))
	})

	audio, err := o.Synthesize(context.Background(), "Water quality is good; maintain current practice.")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3fake-mp3"), audio)
	assert.Equal(t, "alloy", got["voice"])
	assert.Equal(t, "tts-1", got["model"])

	_, err = o.Synthesize(context.Background(), "")
	assert.Error(t, err)
}

func TestOpenAI_Transcribe(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "te", r.FormValue("language"))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "RIFFfake", string(body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "pH seven, oxygen five"})
	})

	path := filepath.Join(t.TempDir(), "reading.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFFfake"), 0o644))

	text, err := o.Transcribe(context.Background(), path, "te")
	require.NoError(t, err)
	assert.Equal(t, "pH seven, oxygen five", text)
}

func TestOpenAI_SynthesizeServerError(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}})
	})
	_, err := o.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}

func TestParseReading_KeepsSign(t *testing.T) {
	tests := map[string]string{
		"digits":  "pH 7, ammonia -0.5",
		"minus":   "pH seven, ammonia minus point five",
		"no lead": "ammonia -.5",
	}
	for name, transcript := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := ParseReading(transcript, water.DefaultMeasurements())
			require.NoError(t, err)
			assert.Equal(t, -0.5, r.Measurements.Ammonia)

			_, err = water.Validate(r.Measurements)
			var verr *water.ErrValidation
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, water.FeatureAmmonia, verr.Field)
		})
	}
}

func TestParseReading_HyphenatedWords(t *testing.T) {
	r, err := ParseReading("salinity twenty-five", water.DefaultMeasurements())
	require.NoError(t, err)
	assert.Equal(t, 25.0, r.Measurements.Salinity)
}
