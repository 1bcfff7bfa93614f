package handlers

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/tcstack/internal/teamcity"
)

func TestPlan_Apply(t *testing.T) {
	path := writeTestConfig(t, 2, true)

	var err error
	output := captureOutput(func() {
		err = Plan(context.Background(), path, false, false)
	})
	require.NoError(t, err)

	assert.Contains(t, output, "tcstack apply plan: ci")
	assert.Contains(t, output, "Stage 1")
	assert.Contains(t, output, teamcity.AdminPasswordID)
	assert.Contains(t, output, teamcity.IDsFor("teamcity-2").Release)

	// The admin password has no dependencies and is listed before the grant.
	assert.Less(t, strings.Index(output, teamcity.AdminPasswordID), strings.Index(output, teamcity.IDsFor("teamcity-1").Grant))
}

func TestPlan_Destroy(t *testing.T) {
	path := writeTestConfig(t, 1, false)

	var err error
	output := captureOutput(func() {
		err = Plan(context.Background(), path, true, true)
	})
	require.NoError(t, err)

	assert.Contains(t, output, "tcstack destroy plan: ci")
	ids := teamcity.IDsFor("teamcity-1")
	assert.Less(t, strings.Index(output, ids.Release), strings.Index(output, ids.Namespace+" "))
}

func TestPlan_InvalidConfig(t *testing.T) {
	err := Plan(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), false, false)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	path := writeTestConfig(t, 1, true)

	orig := renderOutput
	t.Cleanup(func() { renderOutput = orig })
	var buf bytes.Buffer
	renderOutput = &buf

	require.NoError(t, Render(context.Background(), path))

	out := buf.String()
	assert.Contains(t, out, "kind: Namespace")
	assert.Contains(t, out, "database.properties")
	assert.Contains(t, out, teamcity.Masked)
	assert.Contains(t, out, "# release: postgresql/postgresql")
	assert.Contains(t, out, "# release: teamcity-1/teamcity-1")
	assert.Contains(t, out, "server-block.conf")
	assert.NotContains(t, out, "pw-")
}
