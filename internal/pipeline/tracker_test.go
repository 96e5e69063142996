package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torgpult/catalog-service/internal/database"
	"github.com/torgpult/catalog-service/internal/types"
)

type errLog struct{ memLog }

func (l *errLog) LatestByFilename(context.Context, string) (*database.ImportFileRecord, error) {
	return nil, errors.New("connection refused")
}

func TestFingerprintIsStable(t *testing.T) {
	a := Fingerprint([]byte("<catalog/>"))
	b := Fingerprint([]byte("<catalog/>"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := Fingerprint([]byte("<catalog><offer sku=\"A\"/></catalog>"))
	b := Fingerprint([]byte("<catalog><offer sku=\"B\"/></catalog>"))
	assert.NotEqual(t, a, b)
}

func TestShouldProcessNewFile(t *testing.T) {
	log := &memLog{}

	ok, err := ShouldProcess(context.Background(), log, "feed.xml", Fingerprint([]byte("x")))
	require.NoError(t, err)
	assert.True(t, ok, "never-seen file is processed")
}

func TestShouldProcessMatchingFingerprint(t *testing.T) {
	log := &memLog{}
	fp := Fingerprint([]byte("x"))
	require.NoError(t, log.RecordSuccess(context.Background(), "feed.xml", fp, time.Now(), 10))

	ok, err := ShouldProcess(context.Background(), log, "feed.xml", fp)
	require.NoError(t, err)
	assert.False(t, ok, "unchanged fingerprint is skipped")
}

func TestShouldProcessChangedFingerprint(t *testing.T) {
	log := &memLog{}
	require.NoError(t, log.RecordSuccess(context.Background(), "feed.xml", Fingerprint([]byte("v1")), time.Now(), 10))

	ok, err := ShouldProcess(context.Background(), log, "feed.xml", Fingerprint([]byte("v2")))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldProcessUsesNewestRecord(t *testing.T) {
	ctx := context.Background()
	log := &memLog{}
	fpOld := Fingerprint([]byte("v1"))
	fpNew := Fingerprint([]byte("v2"))
	require.NoError(t, log.RecordSuccess(ctx, "feed.xml", fpOld, time.Now(), 10))
	require.NoError(t, log.RecordSuccess(ctx, "feed.xml", fpNew, time.Now(), 12))

	// reverting the file to the old content counts as a change again
	ok, err := ShouldProcess(ctx, log, "feed.xml", fpOld)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ShouldProcess(ctx, log, "feed.xml", fpNew)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldProcessAfterFailedRun(t *testing.T) {
	// a failed run records its fingerprint too; an identical retry would
	// just fail the same way, so it is also skipped until the file changes
	log := &memLog{}
	fp := Fingerprint([]byte("bad"))
	require.NoError(t, log.RecordFailure(context.Background(), "feed.xml", fp, time.Now(), "no offers found"))

	ok, err := ShouldProcess(context.Background(), log, "feed.xml", fp)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, types.RunStatusError, log.records[0].Status)
}

func TestShouldProcessPropagatesLogError(t *testing.T) {
	_, err := ShouldProcess(context.Background(), &errLog{}, "feed.xml", "abc")
	require.Error(t, err)
}
