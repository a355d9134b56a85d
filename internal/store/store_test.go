package store_test

import (
	"context"
	"testing"

	"github.com/paperforge/paperforge/internal/bloom"
	"github.com/paperforge/paperforge/internal/embedding"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/store"
)

func TestMemory_AddAndGet(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	docs := []store.Document{
		{ID: "a", Text: "syllabus", Metadata: map[string]string{"type": "syllabus"}},
		{ID: "b", Text: "q1", Metadata: map[string]string{"type": "question", "set": "Set A"}},
		{ID: "c", Text: "q2", Metadata: map[string]string{"type": "question", "set": "Set B"}},
	}
	for _, doc := range docs {
		if err := m.Add(ctx, doc); err != nil {
			t.Fatalf("Add(%s) error = %v", doc.ID, err)
		}
	}

	questions, err := m.Get(ctx, map[string]string{"type": "question"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	setA, err := m.Get(ctx, map[string]string{"type": "question", "set": "Set A"})
	if err != nil {
		t.Fatal(err)
	}
	if len(setA) != 1 || setA[0].ID != "b" {
		t.Errorf("Set A docs = %+v", setA)
	}

	all, err := m.Get(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("nil filter returned %d docs, want all 3", len(all))
	}
}

func TestMemory_AddRequiresID(t *testing.T) {
	m := store.NewMemory()
	if err := m.Add(context.Background(), store.Document{Text: "no id"}); err == nil {
		t.Error("want error for empty ID")
	}
}

func TestMemory_QueryRanksBySimilarity(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, doc := range []store.Document{
		{ID: "exact", Embedding: []float32{1, 0}},
		{ID: "close", Embedding: []float32{0.9, 0.4}},
		{ID: "far", Embedding: []float32{0, 1}},
	} {
		if err := m.Add(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := m.Query(ctx, []float32{1, 0}, nil, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "exact" || hits[1].ID != "close" {
		t.Errorf("hit order = %s, %s; want exact, close", hits[0].ID, hits[1].ID)
	}
	if hits[0].Score != 1.0 {
		t.Errorf("top score = %f, want 1.0", hits[0].Score)
	}
}

func TestMemory_QueryHonorsFilter(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if err := m.Add(ctx, store.Document{ID: "q", Embedding: []float32{1, 0}, Metadata: map[string]string{"type": "question"}}); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(ctx, store.Document{ID: "s", Embedding: []float32{1, 0}, Metadata: map[string]string{"type": "syllabus"}}); err != nil {
		t.Fatal(err)
	}

	hits, err := m.Query(ctx, []float32{1, 0}, map[string]string{"type": "syllabus"}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "s" {
		t.Errorf("hits = %+v, want only the syllabus doc", hits)
	}
}

func TestStoreSyllabus(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	id, err := store.StoreSyllabus(ctx, m, embedding.NewFake(), "Physics 101", "Mechanics and waves.")
	if err != nil {
		t.Fatalf("StoreSyllabus() error = %v", err)
	}
	if id == "" {
		t.Fatal("empty document ID")
	}

	docs, err := m.Get(ctx, map[string]string{"type": "syllabus", "course": "Physics 101"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Text != "Mechanics and waves." {
		t.Errorf("docs = %+v", docs)
	}
	if len(docs[0].Embedding) == 0 {
		t.Error("syllabus stored without an embedding")
	}
}

func TestStoreQuestions(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	questions := []paper.Question{
		{Number: 1, Text: "Define momentum.", Marks: 2, Level: bloom.Remember, Topic: "Mechanics"},
		{Number: 2, Text: "Analyze projectile motion.", Marks: 8, Level: bloom.Analyze, Topic: "Kinematics"},
	}
	ids, err := store.StoreQuestions(ctx, m, embedding.NewFake(), "Set A", questions)
	if err != nil {
		t.Fatalf("StoreQuestions() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2", ids)
	}

	docs, err := m.Get(ctx, map[string]string{"type": "question", "set": "Set A"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("stored %d docs, want 2", len(docs))
	}
	byText := make(map[string]store.Document)
	for _, doc := range docs {
		byText[doc.Text] = doc
	}
	first := byText["Define momentum."]
	if first.Metadata["marks"] != "2" || first.Metadata["level"] != "remember" || first.Metadata["topic"] != "Mechanics" {
		t.Errorf("metadata = %+v", first.Metadata)
	}
}
