package mockapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abdesslem/cds/internal/api/cds"
	"github.com/abdesslem/cds/internal/domain"
)

func newTestEnv(t *testing.T) (*cds.Client, *Store) {
	t.Helper()

	store := NewStore()
	store.AddProject("PRJ")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(store, logger))
	t.Cleanup(srv.Close)

	return cds.NewClient(cds.WithBaseURL(srv.URL), cds.WithHTTPClient(srv.Client()), cds.WithLogger(logger)), store
}

func TestRoundTrip_StageAndJobAddressing(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatalf("CreatePipeline() error = %v", err)
	}

	pip, err := c.InsertStage(ctx, "PRJ", "P", domain.Stage{Name: "build", Enabled: true})
	if err != nil {
		t.Fatalf("InsertStage() error = %v", err)
	}
	if len(pip.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(pip.Stages))
	}
	stageID := pip.Stages[0].ID

	pip, err = c.AddJob(ctx, "PRJ", "P", stageID, domain.Job{Enabled: true, Action: domain.Action{Name: "compile"}})
	if err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	job := pip.Stages[0].Jobs[0]

	req, err := cds.BuildUpdateJob("PRJ", "P", stageID, job)
	if err != nil {
		t.Fatalf("BuildUpdateJob() error = %v", err)
	}
	want := fmt.Sprintf("/project/PRJ/pipeline/P/stage/%d/job/%d", stageID, job.PipelineActionID)
	if req.Path != want {
		t.Errorf("Path = %q, want %q", req.Path, want)
	}

	job.Action.Name = "compile-all"
	pip, err = c.UpdateJob(ctx, "PRJ", "P", stageID, job)
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}
	if got := pip.Stages[0].Jobs[0].Action.Name; got != "compile-all" {
		t.Errorf("job name = %q, want compile-all", got)
	}

	job3 := domain.Job{PipelineActionID: 3}
	req, err = cds.BuildUpdateJob("PRJ", "P", stageID, job3)
	if err != nil {
		t.Fatalf("BuildUpdateJob() error = %v", err)
	}
	if want := fmt.Sprintf("/project/PRJ/pipeline/P/stage/%d/job/3", stageID); req.Path != want {
		t.Errorf("Path = %q, want %q", req.Path, want)
	}

	pip, err = c.DeleteJob(ctx, "PRJ", "P", stageID, job.PipelineActionID)
	if err != nil {
		t.Fatalf("DeleteJob() error = %v", err)
	}
	if n := len(pip.Stages[0].Jobs); n != 0 {
		t.Errorf("jobs after delete = %d, want 0", n)
	}
}

func TestStageLifecycle(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatal(err)
	}
	var pip *domain.Pipeline
	var err error
	for _, name := range []string{"build", "test", "deploy"} {
		pip, err = c.InsertStage(ctx, "PRJ", "P", domain.Stage{Name: name, Enabled: true})
		if err != nil {
			t.Fatalf("InsertStage(%s) error = %v", name, err)
		}
	}

	deploy := pip.Stages[2]
	deploy.BuildOrder = 1
	pip, err = c.MoveStage(ctx, "PRJ", "P", deploy)
	if err != nil {
		t.Fatalf("MoveStage() error = %v", err)
	}
	if got := stageNames(pip); got != "deploy,build,test" {
		t.Errorf("order after move = %s", got)
	}
	if pip.Stages[0].BuildOrder != 1 || pip.Stages[2].BuildOrder != 3 {
		t.Errorf("build orders not renumbered: %+v", pip.Stages)
	}

	renamed := pip.Stages[1]
	renamed.Name = "compile"
	pip, err = c.UpdateStage(ctx, "PRJ", "P", renamed)
	if err != nil {
		t.Fatalf("UpdateStage() error = %v", err)
	}
	if got := stageNames(pip); got != "deploy,compile,test" {
		t.Errorf("order after update = %s", got)
	}

	pip, err = c.DeleteStage(ctx, "PRJ", "P", pip.Stages[0].ID)
	if err != nil {
		t.Fatalf("DeleteStage() error = %v", err)
	}
	if got := stageNames(pip); got != "compile,test" {
		t.Errorf("order after delete = %s", got)
	}

	if _, err := c.DeleteStage(ctx, "PRJ", "P", 9999); !domain.IsStatus(err, http.StatusNotFound) {
		t.Errorf("DeleteStage(missing) error = %v, want 404", err)
	}
}

func stageNames(pip *domain.Pipeline) string {
	names := make([]string, len(pip.Stages))
	for i, s := range pip.Stages {
		names[i] = s.Name
	}
	return strings.Join(names, ",")
}

func TestParameters_AddAndRename(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatal(err)
	}

	pip, err := c.AddParameter(ctx, "PRJ", "P", domain.Parameter{Name: "FOO", Type: domain.ParameterTypeString, Value: "bar"})
	if err != nil {
		t.Fatalf("AddParameter() error = %v", err)
	}
	if len(pip.Parameters) != 1 || pip.Parameters[0].Name != "FOO" {
		t.Fatalf("parameters = %+v", pip.Parameters)
	}

	pip, err = c.UpdateParameter(ctx, "PRJ", "P", cds.ParameterRename("FOO", domain.Parameter{Name: "BAZ", Type: domain.ParameterTypeBoolean, Value: "1"}))
	if err != nil {
		t.Fatalf("UpdateParameter(rename) error = %v", err)
	}
	got := pip.Parameters[0]
	if got.Name != "BAZ" || got.Value != "true" {
		t.Errorf("renamed parameter = %+v, want BAZ=true", got)
	}

	pip, err = c.UpdateParameter(ctx, "PRJ", "P", cds.ParameterUpdate(domain.Parameter{Name: "BAZ", Type: domain.ParameterTypeBoolean, Value: "false"}))
	if err != nil {
		t.Fatalf("UpdateParameter(update) error = %v", err)
	}
	if pip.Parameters[0].Value != "false" {
		t.Errorf("value = %q, want false", pip.Parameters[0].Value)
	}

	// The old name no longer exists.
	_, err = c.UpdateParameter(ctx, "PRJ", "P", cds.ParameterUpdate(domain.Parameter{Name: "FOO"}))
	if !domain.IsStatus(err, http.StatusNotFound) {
		t.Errorf("UpdateParameter(FOO) error = %v, want 404", err)
	}

	pip, err = c.DeleteParameter(ctx, "PRJ", "P", "BAZ")
	if err != nil {
		t.Fatalf("DeleteParameter() error = %v", err)
	}
	if len(pip.Parameters) != 0 {
		t.Errorf("parameters after delete = %+v", pip.Parameters)
	}
}

func TestImportPreviewExport(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	code := `name: P
stages:
  - name: build
    enabled: true
    jobs:
      - enabled: true
        action:
          name: compile
parameters:
  - name: FOO
    type: string
    value: bar
`

	preview, err := c.PreviewPipeline(ctx, "PRJ", code)
	if err != nil {
		t.Fatalf("PreviewPipeline() error = %v", err)
	}
	if preview.Name != "P" || len(preview.Stages) != 1 || preview.Stages[0].Jobs[0].Action.Name != "compile" {
		t.Errorf("preview = %+v", preview)
	}
	if _, err := c.GetPipeline(ctx, "PRJ", "P"); !domain.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("preview must not persist, GetPipeline() error = %v", err)
	}

	msgs, err := c.CreateFromImport(ctx, "PRJ", code, cds.ImportOptions{})
	if err != nil {
		t.Fatalf("CreateFromImport() error = %v", err)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "created") {
		t.Errorf("messages = %v", msgs)
	}

	// A second creation conflicts unless forced.
	if _, err := c.CreateFromImport(ctx, "PRJ", code, cds.ImportOptions{}); !domain.IsStatus(err, http.StatusConflict) {
		t.Errorf("second CreateFromImport() error = %v, want 409", err)
	}
	if _, err := c.CreateFromImport(ctx, "PRJ", code, cds.ImportOptions{Force: true}); err != nil {
		t.Errorf("forced CreateFromImport() error = %v", err)
	}

	replaced := strings.Replace(code, "compile", "package", 1)
	msgs, err = c.ReplaceFromImport(ctx, "PRJ", "P", replaced, cds.ImportOptions{})
	if err != nil {
		t.Fatalf("ReplaceFromImport() error = %v", err)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "updated") {
		t.Errorf("messages = %v", msgs)
	}

	exported, err := c.ExportPipeline(ctx, "PRJ", "P")
	if err != nil {
		t.Fatalf("ExportPipeline() error = %v", err)
	}
	for _, want := range []string{"version: v1.0", "name: P", "name: package", "permissions:"} {
		if !strings.Contains(exported, want) {
			t.Errorf("export missing %q:\n%s", want, exported)
		}
	}

	pulled, err := c.PullPipeline(ctx, "PRJ", "P")
	if err != nil {
		t.Fatalf("PullPipeline() error = %v", err)
	}
	if pulled != exported {
		t.Errorf("pull and export differ:\n%s\n---\n%s", pulled, exported)
	}

	// The exported text imports back unchanged.
	if _, err := c.ReplaceFromImport(ctx, "PRJ", "P", strings.Split(exported, "permissions:")[0], cds.ImportOptions{}); err != nil {
		t.Errorf("re-import of export error = %v", err)
	}
}

func TestImport_RejectsUnknownFields(t *testing.T) {
	c, _ := newTestEnv(t)

	_, err := c.PreviewPipeline(context.Background(), "PRJ", "name: P\nstagez: []\n")
	if !domain.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("PreviewPipeline() error = %v, want 400", err)
	}
}

func TestImport_RequiresYAMLNegotiation(t *testing.T) {
	_, store := newTestEnv(t)
	srv := httptest.NewServer(New(store, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/project/PRJ/import/pipeline", "application/json", strings.NewReader(`{"name":"P"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without format = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/project/PRJ/import/pipeline?format=yaml", "application/json", strings.NewReader("name: P"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status with json content type = %d, want 415", resp.StatusCode)
	}
}

func TestRollback(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.InsertStage(ctx, "PRJ", "P", domain.Stage{Name: "build"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.InsertStage(ctx, "PRJ", "P", domain.Stage{Name: "test"}); err != nil {
		t.Fatal(err)
	}

	audits, err := c.ListAudits(ctx, "PRJ", "P")
	if err != nil {
		t.Fatalf("ListAudits() error = %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("audits = %d, want 2", len(audits))
	}
	// Newest first: the snapshot taken before "test" was inserted.
	if n := len(audits[0].Pipeline.Stages); n != 1 {
		t.Errorf("latest audit has %d stages, want 1", n)
	}

	pip, err := c.RollbackPipeline(ctx, "PRJ", "P", audits[0].ID)
	if err != nil {
		t.Fatalf("RollbackPipeline() error = %v", err)
	}
	if got := stageNames(pip); got != "build" {
		t.Errorf("stages after rollback = %s, want build", got)
	}

	if _, err := c.RollbackPipeline(ctx, "PRJ", "P", 424242); !domain.IsStatus(err, http.StatusNotFound) {
		t.Errorf("RollbackPipeline(unknown) error = %v, want 404", err)
	}
}

func TestGetPipeline_UsageAndDelete(t *testing.T) {
	c, store := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddApplication("PRJ", "app", "P"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddWorkflow("PRJ", "wf", "P"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddEnvironment("PRJ", "prod"); err != nil {
		t.Fatal(err)
	}

	pip, err := c.GetPipeline(ctx, "PRJ", "P")
	if err != nil {
		t.Fatalf("GetPipeline() error = %v", err)
	}
	if pip.Usage == nil || len(pip.Usage.Applications) != 1 || len(pip.Usage.Workflows) != 1 || len(pip.Usage.Environments) != 1 {
		t.Errorf("usage = %+v", pip.Usage)
	}

	apps, err := c.ListApplications(ctx, "PRJ", "P")
	if err != nil {
		t.Fatalf("ListApplications() error = %v", err)
	}
	if len(apps) != 1 || apps[0].Name != "app" {
		t.Errorf("applications = %+v", apps)
	}

	// In use: the backend refuses and the client passes the status through.
	ok, err := c.DeletePipeline(ctx, "PRJ", "P")
	if ok || !domain.IsStatus(err, http.StatusConflict) {
		t.Errorf("DeletePipeline(in use) = %v, %v; want false, 409", ok, err)
	}

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "Q"}); err != nil {
		t.Fatal(err)
	}
	ok, err = c.DeletePipeline(ctx, "PRJ", "Q")
	if err != nil || !ok {
		t.Errorf("DeletePipeline(Q) = %v, %v; want true, nil", ok, err)
	}

	pips, err := c.ListPipelines(ctx, "PRJ")
	if err != nil {
		t.Fatalf("ListPipelines() error = %v", err)
	}
	if len(pips) != 1 || pips[0].Name != "P" {
		t.Errorf("pipelines = %+v", pips)
	}
}

func TestUpdatePipeline_Rename(t *testing.T) {
	c, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := c.CreatePipeline(ctx, "PRJ", domain.Pipeline{Name: "P"}); err != nil {
		t.Fatal(err)
	}
	pip, err := c.UpdatePipeline(ctx, "PRJ", "P", domain.Pipeline{Name: "P2", Description: "renamed"})
	if err != nil {
		t.Fatalf("UpdatePipeline() error = %v", err)
	}
	if pip.Name != "P2" {
		t.Errorf("name = %q, want P2", pip.Name)
	}
	if _, err := c.GetPipeline(ctx, "PRJ", "P"); !domain.IsStatus(err, http.StatusNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
	if _, err := c.GetPipeline(ctx, "PRJ", "P2"); err != nil {
		t.Errorf("GetPipeline(P2) error = %v", err)
	}
}

func TestUnknownProject(t *testing.T) {
	c, _ := newTestEnv(t)

	_, err := c.ListPipelines(context.Background(), "NOPE")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("error = %v, want 404", err)
	}
	if !strings.Contains(string(apiErr.Body), "project NOPE does not exist") {
		t.Errorf("body = %s", apiErr.Body)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	_, store := newTestEnv(t)
	srv := httptest.NewServer(New(store, slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/project/PRJ/pipeline", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}
}
