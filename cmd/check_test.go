package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giygas/druglabel-checker/render"
)

var checkLabels = map[string]string{
	"warfarin": `{"results":[{"id":"w1","drug_interactions":["Aspirin may increase the risk of bleeding."],"warnings":"Bleeding risk."}]}`,
	"aspirin":  `{"results":[{"id":"a1","drug_interactions":["Consult a doctor if taking other drugs."]}]}`,
}

func TestCheckCmd_Use(t *testing.T) {
	assert.Equal(t, "check [drug-a] [drug-b]", checkCmd.Use)
	assert.NotNil(t, checkCmd.Flags().Lookup("json"))
}

func TestCheckCmd_TooManyArgs(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	_, _, err := execute(context.Background(), "", "check", "a", "b", "c")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts at most 2 arg(s)")
}

func TestCheckCmd_PrintsReport(t *testing.T) {
	srv := fakeOpenFDA(t, checkLabels)
	setupEnv(t, srv.URL)

	out, _, err := execute(context.Background(), "", "check", "warfarin", "aspirin")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, render.Banner+"\n"))
	assert.Contains(t, out, "=== warfarin: label excerpts ===")
	assert.Contains(t, out, "[Drug Interactions]\nAspirin may increase the risk of bleeding.")
	assert.Contains(t, out, "[Warnings]\nBleeding risk.")
	assert.Contains(t, out, "=== aspirin: label excerpts ===")
	assert.Contains(t, out, "=== Cross-mention check ===")
	assert.Contains(t, out, " - Label for warfarin mentions aspirin in 'Drug Interactions'.")
	assert.NotContains(t, out, render.NoCrossMentions)
}

func TestCheckCmd_PromptsForMissingNames(t *testing.T) {
	srv := fakeOpenFDA(t, checkLabels)
	setupEnv(t, srv.URL)

	out, _, err := execute(context.Background(), "  warfarin \naspirin\n", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Enter first drug name: ")
	assert.Contains(t, out, "Enter second drug name: ")
	assert.Contains(t, out, "=== warfarin: label excerpts ===")
}

func TestCheckCmd_PromptsOnlyForSecondName(t *testing.T) {
	srv := fakeOpenFDA(t, checkLabels)
	setupEnv(t, srv.URL)

	out, _, err := execute(context.Background(), "aspirin", "check", "warfarin")

	require.NoError(t, err)
	assert.NotContains(t, out, "Enter first drug name: ")
	assert.Contains(t, out, "Enter second drug name: ")
	assert.Contains(t, out, "=== aspirin: label excerpts ===")
}

func TestCheckCmd_EmptyName(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	_, _, err := execute(context.Background(), "\n", "check", "warfarin")

	require.ErrorIs(t, err, errNameRequired)
}

func TestCheckCmd_NoLabelFound(t *testing.T) {
	srv := fakeOpenFDA(t, nil)
	setupEnv(t, srv.URL)

	out, _, err := execute(context.Background(), "", "check", "unobtainium", "aspirin")

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, render.NoLabel))
	assert.Contains(t, out, render.NoCrossMentions)
}

func TestCheckCmd_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	setupEnv(t, srv.URL)

	out, errOut, err := execute(context.Background(), "", "check", "warfarin", "aspirin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not retrieve label data")
	assert.Contains(t, errOut, render.LookupFailed)
	assert.NotContains(t, out, render.NoLabel)
	assert.NotContains(t, out, "=== Cross-mention check ===")
}

func TestCheckCmd_JSON(t *testing.T) {
	srv := fakeOpenFDA(t, checkLabels)
	setupEnv(t, srv.URL)

	out, _, err := execute(context.Background(), "", "check", "--json", "warfarin", "aspirin")
	require.NoError(t, err)

	var report struct {
		CheckID string `json:"check_id"`
		DrugA   struct {
			Name     string            `json:"name"`
			Found    bool              `json:"found"`
			Sections map[string]string `json:"sections"`
		} `json:"drug_a"`
		Notes []string `json:"notes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.CheckID)
	assert.Equal(t, "warfarin", report.DrugA.Name)
	assert.True(t, report.DrugA.Found)
	assert.Equal(t, "Aspirin may increase the risk of bleeding.", report.DrugA.Sections["drug_interactions"])
	assert.Equal(t, []string{"Label for warfarin mentions aspirin in 'Drug Interactions'."}, report.Notes)
}

func TestCheckCmd_InvalidConfig(t *testing.T) {
	setupEnv(t, "not a url")

	_, _, err := execute(context.Background(), "", "check", "a", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(context.Background(), "", "version")

	require.NoError(t, err)
	assert.Equal(t, "druglabel version dev\n", out)
}
