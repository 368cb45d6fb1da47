package service

import (
	"context"
	"strings"
	"testing"

	"projektchat/internal/domain"
)

func TestProjectCreateAddsDefaultSession(t *testing.T) {
	env := newTestEnv(t, "http://unused")

	project, err := env.projects.Create(&domain.CreateProjectRequest{Name: "Neu"})
	if err != nil {
		t.Fatal(err)
	}

	sessions, err := env.chat.ListSessions(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Name != domain.DefaultSessionName {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestProjectLiveCounts(t *testing.T) {
	srv := stubCompletion(t, "ok", nil)
	defer srv.Close()
	env := newTestEnv(t, srv.URL)

	project, _ := env.projects.Create(&domain.CreateProjectRequest{Name: "P"})
	env.documents.Upload(project.ID, "a.md", "", []byte("# A"))

	fragments, _, err := env.chat.Chat(context.Background(), project.ID,
		&domain.ChatRequest{Message: "Hallo"}, false)
	if err != nil {
		t.Fatal(err)
	}
	for range fragments {
	}

	got, err := env.projects.Get(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DocumentCount != 1 {
		t.Errorf("document count = %d", got.DocumentCount)
	}
	if got.MessageCount != 2 {
		t.Errorf("message count = %d", got.MessageCount)
	}
}

func TestProjectDuplicate(t *testing.T) {
	srv := stubCompletion(t, "Antwort", nil)
	defer srv.Close()
	env := newTestEnv(t, srv.URL)

	project, _ := env.projects.Create(&domain.CreateProjectRequest{Name: "Original"})
	env.documents.Upload(project.ID, "daten.md", "", []byte("# Daten"))

	fragments, _, err := env.chat.Chat(context.Background(), project.ID,
		&domain.ChatRequest{Message: "Frage"}, false)
	if err != nil {
		t.Fatal(err)
	}
	for range fragments {
	}

	dup, err := env.projects.Duplicate(project.ID, "")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == project.ID {
		t.Fatal("duplicate got the same ID")
	}
	if dup.Name != "Original (Kopie)" {
		t.Errorf("name = %q", dup.Name)
	}
	if dup.MessageCount != 2 || dup.DocumentCount != 1 {
		t.Errorf("counts = %d messages, %d documents", dup.MessageCount, dup.DocumentCount)
	}

	// The copy is independent of the original.
	if err := env.chat.ClearHistory(dup.ID); err != nil {
		t.Fatal(err)
	}
	original, _ := env.projects.Get(project.ID)
	if original.MessageCount != 2 {
		t.Errorf("original affected by copy mutation, count = %d", original.MessageCount)
	}
}

func TestProjectExport(t *testing.T) {
	srv := stubCompletion(t, "Antwort", nil)
	defer srv.Close()
	env := newTestEnv(t, srv.URL)

	project, _ := env.projects.Create(&domain.CreateProjectRequest{Name: "P"})
	env.documents.Upload(project.ID, "a.md", "", []byte("# A"))
	fragments, _, _ := env.chat.Chat(context.Background(), project.ID,
		&domain.ChatRequest{Message: "Frage"}, false)
	for range fragments {
	}

	export, err := env.projects.Export(project.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.Project.ID != project.ID {
		t.Errorf("project = %+v", export.Project)
	}
	if len(export.Sessions) == 0 || len(export.Messages) != 2 || len(export.Documents) != 1 {
		t.Errorf("export sizes: %d sessions, %d messages, %d documents",
			len(export.Sessions), len(export.Messages), len(export.Documents))
	}
	if export.ExportedAt.IsZero() {
		t.Error("ExportedAt not set")
	}
}

func TestStats(t *testing.T) {
	srv := stubCompletion(t, "ok", nil)
	defer srv.Close()
	env := newTestEnv(t, srv.URL)

	a, _ := env.projects.Create(&domain.CreateProjectRequest{Name: "A"})
	env.projects.Create(&domain.CreateProjectRequest{Name: "B"})
	env.documents.Upload(a.ID, "x.md", "", []byte("# X"))
	fragments, _, _ := env.chat.Chat(context.Background(), a.ID,
		&domain.ChatRequest{Message: "Hallo"}, false)
	for range fragments {
	}

	stats, err := env.projects.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.ActiveProjects != 2 {
		t.Errorf("active projects = %d", stats.ActiveProjects)
	}
	if stats.TotalMessages != 2 || stats.TotalDocuments != 1 {
		t.Errorf("totals = %d messages, %d documents", stats.TotalMessages, stats.TotalDocuments)
	}
	if stats.ProjectsWithMessages != 1 || stats.ProjectsWithDocuments != 1 {
		t.Errorf("with = %d/%d", stats.ProjectsWithMessages, stats.ProjectsWithDocuments)
	}
	if stats.AvgMessagesPerProject != 1 {
		t.Errorf("avg messages = %v", stats.AvgMessagesPerProject)
	}
}

func TestDocumentUploadNormalizesAndCounts(t *testing.T) {
	env := newTestEnv(t, "http://unused")
	project, _ := env.projects.Create(&domain.CreateProjectRequest{Name: "P"})

	doc, err := env.documents.Upload(project.ID, "noten.csv", "text/csv",
		[]byte("name,score\nAnna,3\nBernd,5\n"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.FileType != "csv" {
		t.Errorf("file type = %q", doc.FileType)
	}
	if !strings.Contains(doc.Content, "## Statistiken:") {
		t.Errorf("content not normalized:\n%s", doc.Content)
	}
	if doc.Metadata[domain.MetadataKeyProcessed] != true {
		t.Errorf("metadata = %v", doc.Metadata)
	}
	if doc.Metadata[domain.MetadataKeyCharCount].(int) <= 0 {
		t.Errorf("char count = %v", doc.Metadata[domain.MetadataKeyCharCount])
	}

	contexts, err := env.documents.Context(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(contexts) != 1 || contexts[0].Filename != "noten.csv" {
		t.Errorf("contexts = %+v", contexts)
	}
}
