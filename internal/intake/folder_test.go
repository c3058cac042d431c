package intake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

type fakeSaver struct {
	mu         sync.Mutex
	categories map[string]int64
	cases      []store.Case
	sources    []string
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{categories: map[string]int64{}}
}

func (f *fakeSaver) CategoryID(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == "" {
		return 0, nil
	}
	if id, ok := f.categories[name]; ok {
		return id, nil
	}
	id := int64(len(f.categories) + 1)
	f.categories[name] = id
	return id, nil
}

func (f *fakeSaver) IntakeCase(_ context.Context, c store.Case, actor, source string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.CustomerName == "" {
		return 0, &store.ValidationError{Field: "customer_name", Message: "is required"}
	}
	f.cases = append(f.cases, c)
	f.sources = append(f.sources, source)
	return int64(len(f.cases)), nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cases)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestOneShotIntake(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "single.json"),
		`{"customer_name":"Ana","subscriber_number":1001,"category":"Billing","debt_amount":12.50}`)
	writeFile(t, filepath.Join(dir, "batch.json"),
		`[{"customer_name":"Ben","subscriber_number":"S-2","category":"Billing"},{"subscriber_number":"S-3"}]`)
	writeFile(t, filepath.Join(dir, "lines.jsonl"),
		"{\"customer_name\":\"Cy\",\"subscriber_number\":\"S-4\",\"status\":\"Closed\"}\n\nnot json\n{\"customer_name\":\"Di\",\"subscriber_number\":\"S-5\"}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	saver := newFakeSaver()
	fi := NewFolderIngestor(saver, FolderOptions{Dir: dir, MarkDone: true})
	require.NoError(t, fi.Run(context.Background()))

	assert.Equal(t, Stats{Ingested: 4, Failed: 2}, fi.Stats())
	var names []string
	for _, c := range saver.cases {
		names = append(names, c.CustomerName)
	}
	assert.ElementsMatch(t, []string{"Ana", "Ben", "Cy", "Di"}, names)
	assert.Len(t, saver.categories, 1)

	for _, c := range saver.cases {
		switch c.CustomerName {
		case "Ana":
			assert.Equal(t, "1001", c.SubscriberNumber)
			assert.Equal(t, "12.50", c.DebtAmount)
			assert.Equal(t, int64(1), c.CategoryID)
		case "Cy":
			assert.Equal(t, store.StatusClosed, c.Status)
		}
	}

	for _, name := range []string{"single.json", "batch.json", "lines.jsonl"} {
		_, err := os.Stat(filepath.Join(dir, name+DoneSuffix))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)

	// A second pass finds nothing new.
	require.NoError(t, NewFolderIngestor(saver, FolderOptions{Dir: dir}).Run(context.Background()))
	assert.Equal(t, 4, saver.count())
}

func TestMalformedJSONFileCountsOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.json"), `{"customer_name":`)

	fi := NewFolderIngestor(newFakeSaver(), FolderOptions{Dir: dir, MarkDone: true})
	require.NoError(t, fi.Run(context.Background()))
	assert.Equal(t, Stats{Failed: 1}, fi.Stats())

	_, err := os.Stat(filepath.Join(dir, "bad.json"))
	assert.NoError(t, err, "failed files are left in place")
}

func TestWatchTailsJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.jsonl")
	writeFile(t, path, "{\"customer_name\":\"Old\",\"subscriber_number\":\"S-0\"}\n")

	saver := newFakeSaver()
	fi := NewFolderIngestor(saver, FolderOptions{Dir: dir, Watch: true, TailFromEnd: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fi.Run(ctx) }()

	// Give the watcher time to register before appending.
	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"customer_name\":\"New\",\"subscriber_number\":\"S-1\"}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return saver.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))

	saver.mu.Lock()
	defer saver.mu.Unlock()
	assert.Equal(t, "New", saver.cases[0].CustomerName)
	assert.Equal(t, "feed.jsonl", saver.sources[0])
}

func TestWatchIngestsJSONFileOnce(t *testing.T) {
	dir := t.TempDir()
	saver := newFakeSaver()
	opts := FolderOptions{Dir: dir, Watch: true, TailFromEnd: true, SettleDelay: 300 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	fi := NewFolderIngestor(saver, opts)
	done := make(chan error, 1)
	go func() { done <- fi.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)

	// Written in two steps: a create and separate writes for the same file.
	path := filepath.Join(dir, "one.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.WriteString(`{"customer_name":"Ana",`)
	require.NoError(t, err)
	_, err = f.WriteString(`"subscriber_number":"S-1"}`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return saver.count() == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Never(t, func() bool { return saver.count() > 1 }, 500*time.Millisecond, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path + DoneSuffix)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	cancel()
	<-done
	assert.Equal(t, Stats{Ingested: 1}, fi.Stats())

	// A restart over the same directory saves nothing new.
	ctx, cancel = context.WithCancel(context.Background())
	restarted := NewFolderIngestor(saver, opts)
	go func() { done <- restarted.Run(ctx) }()
	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, Stats{}, restarted.Stats())
}

func TestWatchStartupScanMarksJSONDone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "queued.json"), `{"customer_name":"Bo","subscriber_number":"S-2"}`)
	saver := newFakeSaver()
	opts := FolderOptions{Dir: dir, Watch: true, TailFromEnd: true, SettleDelay: 50 * time.Millisecond}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- NewFolderIngestor(saver, opts).Run(ctx) }()
		time.Sleep(200 * time.Millisecond)
		cancel()
		<-done
	}

	assert.Equal(t, 1, saver.count())
	_, err := os.Stat(filepath.Join(dir, "queued.json"+DoneSuffix))
	assert.NoError(t, err)
}

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord([]byte(`{"customer_name":"Ana","subscriber_number":"0042","phone":5551234,"last_meter_reading":null}`))
	require.NoError(t, err)
	assert.Equal(t, "0042", string(r.SubscriberNumber))
	assert.Equal(t, "5551234", string(r.Phone))
	assert.Empty(t, string(r.LastMeterReading))

	_, err = ParseRecord([]byte(`{"subscriber_number":true}`))
	assert.Error(t, err)
}
