package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCatalogJSON(t *testing.T) {
	out, err := runCLI(t, "catalog")
	require.NoError(t, err)

	var entities []catalog.Entity
	require.NoError(t, json.Unmarshal([]byte(out), &entities))
	assert.Len(t, entities, len(catalog.Hockey().Entities()))
	assert.Equal(t, "Association", entities[0].Name)
}

func TestCatalogYAML(t *testing.T) {
	out, err := runCLI(t, "catalog", "--format", "yaml")
	require.NoError(t, err)

	var entities []catalog.Entity
	require.NoError(t, yaml.Unmarshal([]byte(out), &entities))
	require.NotEmpty(t, entities)
	player := entities[3]
	assert.Equal(t, "Player", player.Name)
	rel, ok := player.Relation("teams")
	require.True(t, ok)
	assert.Equal(t, catalog.Out, rel.Direction)
	assert.Equal(t, "PLAYS_FOR", rel.Type)
}

func TestCatalogUnknownFormat(t *testing.T) {
	_, err := runCLI(t, "catalog", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSignUploadRequiresFlags(t *testing.T) {
	_, err := runCLI(t, "sign-upload", "--file", "logo.png")
	assert.ErrorContains(t, err, "--file and --type are required")
}

func TestSeedRequiresFile(t *testing.T) {
	_, err := runCLI(t, "seed")
	assert.Error(t, err)

	_, err = runCLI(t, "seed", "does-not-exist.yaml")
	assert.ErrorContains(t, err, "open seed file")
}
