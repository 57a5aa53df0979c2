package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpcd/internal/export"
)

func TestRecordRecent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	base := time.UnixMilli(1_700_000_000_000)
	tick := 0
	db.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	ctx := context.Background()
	run := uuid.New()
	require.NoError(t, db.Record(ctx, run, export.Result{
		Object:   "Cube",
		Path:     "/out/Cube_pcd.ply",
		Points:   120,
		Channels: []string{"Top", "Side"},
	}))
	require.NoError(t, db.Record(ctx, run, export.Result{
		Object: "Lamp",
		Path:   "/out/Lamp_pcd.ply",
		Err:    errors.New("object is not a mesh"),
		Kind:   export.KindInvalidInput,
	}))

	got, err := db.Recent(ctx, 10)
	require.NoError(t, err)

	want := []Entry{
		{
			RunID:     run,
			Object:    "Lamp",
			Path:      "/out/Lamp_pcd.ply",
			Status:    "InvalidInput",
			Error:     "object is not a mesh",
			CreatedAt: base.Add(2 * time.Second),
		},
		{
			RunID:     run,
			Object:    "Cube",
			Path:      "/out/Cube_pcd.ply",
			Points:    120,
			Channels:  []string{"Top", "Side"},
			Status:    "None",
			CreatedAt: base.Add(time.Second),
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Entry{}, "ID")); diff != "" {
		t.Errorf("Recent() mismatch (-want +got):\n%s", diff)
	}

	got, err = db.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Lamp", got[0].Object)
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "history.db"))
	require.Error(t, err)
}
