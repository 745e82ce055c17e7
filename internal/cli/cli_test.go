package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const socialFixture = "../fixture/testdata/social.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kektorgraph", cmd.Use)

	for _, name := range []string{"paths", "show", "search"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}

	fixtureFlag := cmd.PersistentFlags().Lookup("fixture")
	require.NotNil(t, fixtureFlag)
	assert.Equal(t, "f", fixtureFlag.Shorthand)
}

func TestPathsCommand(t *testing.T) {
	out, err := execute(t, "paths", "alice", "carol", "-f", socialFixture, "--max-hops", "2")
	require.NoError(t, err)
	assert.Equal(t, "alice -> bob -> carol\nalice -> dave -> carol\n", out)

	out, err = execute(t, "paths", "alice", "carol", "-f", socialFixture, "--auths", "public", "--max-hops", "1")
	require.NoError(t, err)
	assert.Equal(t, "alice -> carol\n", out)

	out, err = execute(t, "paths", "alice", "carol", "-f", socialFixture, "--max-hops", "2", "--exclude-label", "manages", "--format", "json")
	require.NoError(t, err)
	var result PathsResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Paths, 1)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string(result.Paths[0]))
}

func TestShowCommand(t *testing.T) {
	out, err := execute(t, "show", "alice", "-f", socialFixture, "--auths", "public")
	require.NoError(t, err)
	assert.Contains(t, out, "vertex alice [public]")
	assert.Contains(t, out, "age[public] = 34")
	assert.NotContains(t, out, "salary")
	assert.Contains(t, out, "edge e1 out knows bob")
	assert.Contains(t, out, "extended: visits")

	_, err = execute(t, "show", "e5", "-f", socialFixture, "--edge")
	assert.Error(t, err, "hidden edge shown without --hidden")

	out, err = execute(t, "show", "e5", "-f", socialFixture, "--edge", "--hidden")
	require.NoError(t, err)
	assert.Contains(t, out, "carol -[follows]-> alice")
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "age >= 30", "-f", socialFixture)
	require.NoError(t, err)
	assert.Equal(t, "vertex alice\n", out)

	out, err = execute(t, "search", "salary > 0", "-f", socialFixture, "--auths", "public")
	require.NoError(t, err)
	assert.Equal(t, "no match\n", out)

	out, err = execute(t, "search", "since > 2020", "-f", socialFixture, "--auths", "public", "--type", "edge", "--format", "json")
	require.NoError(t, err)
	var hits []SearchHit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	assert.Equal(t, []SearchHit{{Type: "edge", ID: "e5"}}, hits)

	_, err = execute(t, "search", "age >= 30", "-f", socialFixture, "--type", "node")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "paths", "alice", "carol", "-f", socialFixture, "--format", "xml")
	assert.Error(t, err)
}
