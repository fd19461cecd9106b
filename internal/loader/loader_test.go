package loader

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/ranchcam-go/internal/drivestore"
	"github.com/tphakala/ranchcam-go/internal/errors"
	"github.com/tphakala/ranchcam-go/internal/events"
)

type fakeStore struct {
	csv     string
	name    string
	err     error
	fetches int
}

func (f *fakeStore) FetchEventsCSV(_ context.Context) (*drivestore.CSVFile, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return &drivestore.CSVFile{
		Name:         f.name,
		ModifiedTime: time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC),
		Size:         int64(len(f.csv)),
		Data:         []byte(f.csv),
	}, nil
}

func (f *fakeStore) ImageIndex(_ context.Context) (drivestore.ImageIndex, error) {
	return drivestore.ImageIndex{}, nil
}

func (f *fakeStore) ResolveFile(_ context.Context, _, _ string) (drivestore.FileRef, bool) {
	return drivestore.FileRef{}, false
}

func (f *fakeStore) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

const sampleCSV = `camera,filename,date,time,temp_f,event_type,species,species_group
gate,IMG_0001.JPG,1/18/2026,3:57 PM,41.0,person,,
pond,IMG_0002.JPG,1/18/2026,6:12 AM,38.5,animal,axis deer,deer
`

func TestParseCSV(t *testing.T) {
	t.Parallel()

	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "gate", rows[0].Get(events.ColCamera))
	assert.Equal(t, "person", rows[0].Get(events.ColEventType))
	assert.Equal(t, "axis deer", rows[1].Get(events.ColSpecies))
}

func TestParseCSVHeaderNormalization(t *testing.T) {
	t.Parallel()

	// BOM, surrounding whitespace and mixed case in the header all resolve
	// to the same column names.
	input := "\uFEFFCamera, FILENAME ,Date\ngate,IMG_0001.JPG,1/18/2026\n"
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "gate", rows[0].Get(events.ColCamera))
	assert.Equal(t, "IMG_0001.JPG", rows[0].Get(events.ColFilename))
	assert.Equal(t, "1/18/2026", rows[0].Get(events.ColDate))
}

func TestParseCSVRaggedRows(t *testing.T) {
	t.Parallel()

	input := "camera,filename,date\ngate\npond,IMG_0002.JPG,1/18/2026,extra\n"
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Short row padded with empties.
	assert.Equal(t, "gate", rows[0].Get(events.ColCamera))
	assert.Equal(t, "", rows[0].Get(events.ColFilename))

	// Long row keeps only the headed columns.
	assert.Equal(t, "pond", rows[1].Get(events.ColCamera))
	assert.Len(t, rows[1], 3)
}

func TestParseCSVEmpty(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileParsing, errors.GetCategory(err))
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	store := &fakeStore{csv: sampleCSV, name: "events.csv"}
	mgr := NewManager(store, nil)

	require.Nil(t, mgr.Current())

	snap, err := mgr.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "events.csv", snap.Source)
	assert.Len(t, snap.Events, 2)
	assert.Equal(t, events.CategoryHuman, snap.Events[0].Category)
	assert.Equal(t, "deer", snap.Events[1].Label)

	assert.Same(t, snap, mgr.Current())
}

func TestRefreshKeepsLastGoodSnapshot(t *testing.T) {
	store := &fakeStore{csv: sampleCSV, name: "events.csv"}
	mgr := NewManager(store, nil)

	good, err := mgr.Refresh(context.Background())
	require.NoError(t, err)

	store.err = errors.Newf("drive unavailable").
		Category(errors.CategoryDriveAPI).
		Component("drivestore").
		Build()

	_, err = mgr.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, good, mgr.Current(), "failed refresh must not evict the last good snapshot")
}

func TestRefreshNewSnapshotGetsNewID(t *testing.T) {
	store := &fakeStore{csv: sampleCSV, name: "events.csv"}
	mgr := NewManager(store, nil)

	first, err := mgr.Refresh(context.Background())
	require.NoError(t, err)
	second, err := mgr.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunFailsFastOnFirstLoad(t *testing.T) {
	store := &fakeStore{err: errors.Newf("boom").Component("drivestore").Build()}
	mgr := NewManager(store, nil)

	err := mgr.Run(context.Background(), time.Minute)
	require.Error(t, err)
	assert.Equal(t, 1, store.fetches)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &fakeStore{csv: sampleCSV, name: "events.csv"}
	mgr := NewManager(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- mgr.Run(ctx, 10*time.Millisecond)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	assert.GreaterOrEqual(t, store.fetches, 2)
}
