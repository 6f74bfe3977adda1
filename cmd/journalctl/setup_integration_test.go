//go:build integration

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayjournal/backend/internal/database/testhelper"
)

func TestRunSetup_Idempotent(t *testing.T) {
	cfg := testhelper.Config(t)

	var out bytes.Buffer
	require.NoError(t, runSetup(context.Background(), cfg, testhelper.Logger(), &out))
	assert.Contains(t, out.String(), "already exists")
	assert.Contains(t, out.String(), "Schema ready")
}
