package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/shenikar/resqnet/internal/handler/http/v1"
	"github.com/shenikar/resqnet/internal/keepalive"
	"github.com/shenikar/resqnet/internal/triage"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScoreCmd_Human(t *testing.T) {
	out, _, err := execute(t, NewScoreCmd(), "-t", "flooded_roads")
	require.NoError(t, err)

	assert.Contains(t, out, "SEVERITY: MEDIUM (score 55)")
	assert.Contains(t, out, "1. Deploy inflatable boats")
	assert.Contains(t, out, "RESOURCES:")
	assert.Contains(t, out, "Water Purification Tablets")
}

func TestScoreCmd_JSONMultiHazard(t *testing.T) {
	out, _, err := execute(t, NewScoreCmd(), "-t", "infrastructure_collapse, structure_fire", "-o", "json")
	require.NoError(t, err)

	var e triage.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, triage.SeverityCritical, e.Priority.Severity)
	assert.Equal(t, 100, e.Priority.Score)
	assert.Contains(t, e.Suggestions.Resources, "Excavators")
	assert.Contains(t, e.Suggestions.Resources, "Fire Trucks")
}

func TestScoreCmd_NoDamage(t *testing.T) {
	out, _, err := execute(t, NewScoreCmd(), "--no-damage", "-o", "json")
	require.NoError(t, err)

	var e triage.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, triage.SeverityLow, e.Priority.Severity)
	assert.Equal(t, 0, e.Priority.Score)
	assert.Equal(t, []string{"Verify sector status", "Continue routine monitoring"}, e.Suggestions.Actions)
}

func TestScoreCmd_CustomKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_score: 50\n"), 0o644))

	out, _, err := execute(t, NewScoreCmd(), "-t", "flooded_roads", "--kb", path, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "severity: Critical")
	assert.Contains(t, out, "score: 80")
}

func TestScoreCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"confidence above one", []string{"-t", "fire", "--confidence", "1.5"}},
		{"unknown format", []string{"-t", "fire", "-o", "xml"}},
		{"missing kb file", []string{"-t", "fire", "--kb", "/nonexistent/kb.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, NewScoreCmd(), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSubmitCmd_Success(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != reportsPath || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("unexpected api key %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		assert.Equal(t, "drone", r.FormValue("source"))
		assert.Equal(t, "50.45", r.FormValue("latitude"))
		assert.Equal(t, "30.52", r.FormValue("longitude"))
		assert.Equal(t, "true", r.FormValue("is_emergency"))
		assert.Equal(t, "life_threat", r.FormValue("sos_type"))

		file, header, err := r.FormFile("file")
		if err == nil {
			data, _ := io.ReadAll(file)
			assert.Equal(t, "photo.jpg", header.Filename)
			assert.Equal(t, []byte("jpeg-bytes"), data)
		} else {
			t.Errorf("form file: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(v1.ReportResponse{
			ID:                id,
			ImagePath:         "/uploads/" + id.String() + ".jpg",
			ImageSource:       "drone",
			DamageDetected:    true,
			DamageTypes:       []string{"structure_fire"},
			Severity:          "Critical",
			Confidence:        0.8,
			PriorityScore:     75,
			SuggestedActions:  []string{"Establish fire breaks"},
			RequiredResources: []string{"Fire Trucks"},
			SuggestedSupplies: []string{"Oxygen Tanks"},
			IsEmergency:       true,
			SOSType:           "life_threat",
			Analyzer:          "heuristic",
			Timestamp:         time.Now().UTC(),
		})
	}))
	defer srv.Close()

	image := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o644))

	out, errOut, err := execute(t, NewSubmitCmd(), image,
		"--server", srv.URL, "--api-key", "secret", "--source", "drone",
		"--lat", "50.45", "--lon", "30.52", "--emergency", "--sos-type", "life_threat")
	require.NoError(t, err)

	assert.Contains(t, errOut, "Report stored")
	assert.Contains(t, out, "REPORT "+id.String())
	assert.Contains(t, out, "SEVERITY: CRITICAL (score 75)")
	assert.Contains(t, out, "SOS:      life_threat")
	assert.Contains(t, out, "Establish fire breaks")
}

func TestSubmitCmd_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_ = json.NewEncoder(w).Encode(v1.ErrorResponse{Error: "image exceeds 10 MB limit"})
	}))
	defer srv.Close()

	image := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o644))

	_, errOut, err := execute(t, NewSubmitCmd(), image, "--server", srv.URL, "--source", "citizen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 413")
	assert.Contains(t, err.Error(), "image exceeds 10 MB limit")
	assert.Contains(t, errOut, "Report was not accepted")
}

func TestSubmitCmd_OmitsUnsetCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		_, hasLat := r.MultipartForm.Value["latitude"]
		_, hasLon := r.MultipartForm.Value["longitude"]
		assert.False(t, hasLat)
		assert.False(t, hasLon)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(v1.ReportResponse{ID: uuid.New(), Severity: "Low"})
	}))
	defer srv.Close()

	image := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(image, []byte("png-bytes"), 0o644))

	_, _, err := execute(t, NewSubmitCmd(), image, "--server", srv.URL, "--source", "cctv", "-o", "json")
	require.NoError(t, err)
}

func TestSubmitCmd_RequiresSource(t *testing.T) {
	image := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg-bytes"), 0o644))

	_, _, err := execute(t, NewSubmitCmd(), image, "--server", "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestPingCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != keepalive.HealthPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	out, _, err := execute(t, NewPingCmd(), "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL+keepalive.HealthPath+" is healthy")
}

func TestPingCmd_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, errOut, err := execute(t, NewPingCmd(), "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
	assert.Contains(t, errOut, "Service is not healthy")
}

func TestPingCmd_InvalidSchedule(t *testing.T) {
	_, _, err := execute(t, NewPingCmd(), "--server", "http://127.0.0.1:1", "--every", "not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid keep-alive schedule")
}
