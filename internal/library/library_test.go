package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etudehq/etude-api/internal/events"
	"github.com/etudehq/etude-api/internal/generator"
	"github.com/etudehq/etude-api/internal/notation"
	"github.com/etudehq/etude-api/internal/store"
)

func testParams() generator.Params {
	return generator.Params{
		KeySignature:  "c",
		TimeSignature: notation.TimeSignature{Beats: 4, BeatUnit: 4},
		Clef:          notation.ClefTreble,
		Range:         generator.PitchRange{Lowest: "c/4", Highest: "c/6"},
		Difficulty:    5,
		Measures:      2,
		Tempo:         120,
		TechnicalType: generator.TypeScale,
	}
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestLibrary(t *testing.T, opts ...Option) (*Library, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	lib := New(store.NewMemoryStore(), bus, opts...)
	t.Cleanup(func() {
		_ = lib.Close()
		bus.Close()
	})
	return lib, bus
}

func TestGenerateExerciseLifecycle(t *testing.T) {
	ctx := context.Background()
	lib, bus := newTestLibrary(t)

	ch, cancel := bus.Subscribe()
	defer cancel()

	ex, err := lib.GenerateExercise(ctx, "u1", testParams())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ex.ID == "" || ex.OwnerID != "u1" {
		t.Fatalf("exercise identity: %+v", ex)
	}
	if len(ex.Measures) != 2 {
		t.Errorf("got %d measures, want 2", len(ex.Measures))
	}
	if ex.Metadata.Title == "" {
		t.Error("metadata not populated")
	}
	if !ex.ExpiresAt.Equal(ex.CreatedAt.Add(DefaultExerciseTTL)) {
		t.Errorf("expiry = %v, want created + default TTL", ex.ExpiresAt)
	}
	if ex.Params["technical_type"] != generator.TypeScale {
		t.Errorf("params not preserved: %+v", ex.Params)
	}

	select {
	case e := <-ch:
		if e.Type != events.ExerciseGenerated || e.EntityID != ex.ID {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("generation event never published")
	}

	got, err := lib.GetExercise(ctx, "u1", ex.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != ex.ID {
		t.Errorf("got %q, want %q", got.ID, ex.ID)
	}

	all, err := lib.ListExercises(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("got %d exercises, want 1", len(all))
	}

	if err := lib.DeleteExercise(ctx, "u1", ex.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := lib.GetExercise(ctx, "u1", ex.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGenerateExerciseInvalidParams(t *testing.T) {
	lib, _ := newTestLibrary(t)

	p := testParams()
	p.Difficulty = 11
	p.Tempo = 0

	_, err := lib.GenerateExercise(context.Background(), "u1", p)
	var verr *generator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *generator.ValidationError, got %v", err)
	}
	if len(verr.Violations) != 2 {
		t.Errorf("got %d violations, want 2: %v", len(verr.Violations), verr.Violations)
	}
}

func TestExercisePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	bus := events.NewBus()
	defer bus.Close()

	first := New(st, bus)
	ex, err := first.GenerateExercise(ctx, "u1", testParams())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// A fresh library over the same store decodes the persisted copy.
	second := New(st, bus)
	got, err := second.GetExercise(ctx, "u1", ex.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != ex.ID || got.Metadata.Title != ex.Metadata.Title {
		t.Errorf("decoded exercise differs: %+v vs %+v", got, ex)
	}
	if len(got.Measures) != len(ex.Measures) {
		t.Errorf("measure count %d, want %d", len(got.Measures), len(ex.Measures))
	}
}

func TestPreviewExerciseDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	lib, bus := newTestLibrary(t)

	ch, cancel := bus.Subscribe()
	defer cancel()

	ex, err := lib.PreviewExercise(testParams())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if ex.ID != "" {
		t.Errorf("preview assigned an id: %q", ex.ID)
	}
	if len(ex.Measures) != 2 {
		t.Errorf("got %d measures, want 2", len(ex.Measures))
	}

	all, err := lib.ListExercises(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("preview was persisted: %d exercises", len(all))
	}

	select {
	case e := <-ch:
		t.Errorf("preview published an event: %+v", e)
	default:
	}
}

func TestSearchExercises(t *testing.T) {
	ctx := context.Background()
	lib, _ := newTestLibrary(t)

	scale := testParams()
	if _, err := lib.GenerateExercise(ctx, "u1", scale); err != nil {
		t.Fatalf("generate scale: %v", err)
	}

	arp := testParams()
	arp.TechnicalType = generator.TypeArpeggio
	if _, err := lib.GenerateExercise(ctx, "u1", arp); err != nil {
		t.Fatalf("generate arpeggio: %v", err)
	}

	hits, err := lib.SearchExercises(ctx, "u1", "arpeggio")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Metadata.Title != "C Major Arpeggio" {
		t.Errorf("hit title = %q", hits[0].Metadata.Title)
	}

	// Case-insensitive, matches tags too.
	hits, err = lib.SearchExercises(ctx, "u1", "SCALE")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("got %d hits, want 1", len(hits))
	}

	// Empty query returns everything.
	hits, err = lib.SearchExercises(ctx, "u1", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits, want 2", len(hits))
	}

	// New generations invalidate cached results.
	mixed := testParams()
	mixed.TechnicalType = generator.TypeMixed
	if _, err := lib.GenerateExercise(ctx, "u1", mixed); err != nil {
		t.Fatalf("generate mixed: %v", err)
	}
	hits, err = lib.SearchExercises(ctx, "u1", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits after invalidation, want 3", len(hits))
	}
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lib, bus := newTestLibrary(t, WithTTL(time.Hour), WithClock(clock.Now))

	ex, err := lib.GenerateExercise(ctx, "u1", testParams())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Nothing expired yet.
	removed, err := lib.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed %d exercises before expiry", removed)
	}

	ch, cancel := bus.Subscribe()
	defer cancel()

	clock.now = clock.now.Add(2 * time.Hour)
	removed, err = lib.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d exercises, want 1", removed)
	}

	select {
	case e := <-ch:
		if e.Type != events.ExerciseDeleted || e.EntityID != ex.ID {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("deletion event never published")
	}

	if _, err := lib.GetExercise(ctx, "u1", ex.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after sweep, got %v", err)
	}

	// Idempotent: a second sweep finds nothing.
	removed, err = lib.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed %d exercises", removed)
	}
}

func TestSaveAndGetScore(t *testing.T) {
	ctx := context.Background()
	lib, bus := newTestLibrary(t)

	ch, cancel := bus.Subscribe()
	defer cancel()

	sc := notation.Score{
		Title: "Minuet",
		Parts: []notation.Part{{ID: "part1", Name: "Piano", StaffIDs: []string{"staff1"}}},
		Measures: []notation.Measure{{
			Number: 1,
			Staves: []notation.Staff{{ID: "staff1", Clef: notation.ClefTreble,
				Voices: []notation.Voice{{ID: "main", Notes: []notation.Note{
					{Keys: []string{"c/4"}, Duration: notation.Whole},
				}}}}},
		}},
	}

	result, err := lib.SaveScore(ctx, &sc)
	if err != nil {
		t.Fatalf("save: %v (%+v)", err, result)
	}
	if sc.ID == "" {
		t.Fatal("save did not assign an id")
	}
	if sc.Metadata.CreatedAt.IsZero() || sc.Metadata.ModifiedAt.IsZero() {
		t.Error("save did not stamp timestamps")
	}

	select {
	case e := <-ch:
		if e.Type != events.ScoreSaved || e.EntityID != sc.ID {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("save event never published")
	}

	got, err := lib.GetScore(ctx, sc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Minuet" {
		t.Errorf("title = %q", got.Title)
	}

	if _, err := lib.GetScore(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListScores(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	bus := events.NewBus()
	lib := New(mem, bus)
	t.Cleanup(func() {
		_ = lib.Close()
		bus.Close()
	})

	for _, title := range []string{"Minuet", "Gavotte"} {
		sc := notation.Score{
			Title: title,
			Parts: []notation.Part{{ID: "part1", Name: "Piano", StaffIDs: []string{"staff1"}}},
			Measures: []notation.Measure{{
				Number: 1,
				Staves: []notation.Staff{{ID: "staff1", Clef: notation.ClefTreble,
					Voices: []notation.Voice{{ID: "main", Notes: []notation.Note{
						{Keys: []string{"c/4"}, Duration: notation.Whole},
					}}}}},
			}},
		}
		if _, err := lib.SaveScore(ctx, &sc); err != nil {
			t.Fatalf("save %s: %v", title, err)
		}
	}

	// A garbage record must not break the catalogue.
	if err := mem.Write(ctx, store.ScoreKey("corrupt"), []byte{0xc1}); err != nil {
		t.Fatalf("seed corrupt record: %v", err)
	}

	scores, err := lib.ListScores(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("listed %d scores, want 2", len(scores))
	}
	titles := map[string]bool{}
	for _, sc := range scores {
		titles[sc.Title] = true
	}
	if !titles["Minuet"] || !titles["Gavotte"] {
		t.Errorf("unexpected titles: %v", titles)
	}
}

func TestSaveScoreRejectsInvalid(t *testing.T) {
	lib, _ := newTestLibrary(t)

	sc := notation.Score{
		Title: "Broken",
		Parts: []notation.Part{{ID: "part1", Name: "P", StaffIDs: []string{"ghost"}}},
		Measures: []notation.Measure{{
			Number: 1,
			Staves: []notation.Staff{{ID: "staff1", Clef: notation.ClefTreble,
				Voices: []notation.Voice{{ID: "main", Notes: []notation.Note{
					{Keys: []string{"c/4"}, Duration: notation.Whole},
				}}}}},
		}},
	}

	result, err := lib.SaveScore(context.Background(), &sc)
	if err == nil {
		t.Fatal("expected validation rejection")
	}
	if result.OK() {
		t.Error("result should carry the findings")
	}
	if sc.ID != "" {
		t.Errorf("rejected score was assigned id %q", sc.ID)
	}
}

func TestRepertoireStatus(t *testing.T) {
	ctx := context.Background()
	lib, bus := newTestLibrary(t)

	ch, cancel := bus.Subscribe()
	defer cancel()

	rs := RepertoireStatus{OwnerID: "u1", ScoreID: "s1", Status: "learning"}
	if err := lib.SetRepertoireStatus(ctx, rs); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case e := <-ch:
		if e.Type != events.RepertoireStatusChanged || e.EntityID != "s1" {
			t.Errorf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("status event never published")
	}

	records, err := lib.GetRepertoire(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Status != "learning" {
		t.Fatalf("records: %+v", records)
	}
	if records[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}

	// Upsert replaces the record.
	rs.Status = "mastered"
	if err := lib.SetRepertoireStatus(ctx, rs); err != nil {
		t.Fatalf("update: %v", err)
	}
	records, err = lib.GetRepertoire(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Status != "mastered" {
		t.Errorf("records after upsert: %+v", records)
	}
}

func TestRecordPracticeSession(t *testing.T) {
	lib, bus := newTestLibrary(t)

	ch, cancel := bus.Subscribe()
	defer cancel()

	lib.RecordPracticeSession(context.Background(), PracticeSession{
		OwnerID:    "u1",
		ExerciseID: "ex1",
		DurationS:  600,
	})

	select {
	case e := <-ch:
		if e.Type != events.PracticeSessionRecorded || e.EntityID != "ex1" {
			t.Errorf("unexpected event: %+v", e)
		}
		ps, ok := e.Payload.(PracticeSession)
		if !ok || ps.DurationS != 600 || ps.RecordedAt.IsZero() {
			t.Errorf("unexpected payload: %+v", e.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("session event never published")
	}
}

func TestStubsFailLoudly(t *testing.T) {
	ctx := context.Background()
	lib, _ := newTestLibrary(t)
	sc := &notation.Score{Title: "x"}

	if _, err := lib.AssessDifficulty(ctx, sc); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("AssessDifficulty: %v", err)
	}
	if _, err := lib.RecommendExercises(ctx, "u1"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("RecommendExercises: %v", err)
	}
	if _, err := lib.AnalyzeVoiceLeading(ctx, sc); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("AnalyzeVoiceLeading: %v", err)
	}
	if _, err := lib.ImportMusicXML(ctx, []byte("<score/>")); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("ImportMusicXML: %v", err)
	}
	if _, err := lib.ExportMusicXML(ctx, sc); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("ExportMusicXML: %v", err)
	}
}
