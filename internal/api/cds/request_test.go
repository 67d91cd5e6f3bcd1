package cds

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/abdesslem/cds/internal/domain"
)

func checkRequest(t *testing.T, req *Request, err error, method, path string) {
	t.Helper()
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	if req.Method != method {
		t.Errorf("Method = %q, want %q", req.Method, method)
	}
	if req.Path != path {
		t.Errorf("Path = %q, want %q", req.Path, path)
	}
}

func checkQuery(t *testing.T, req *Request, key, want string) {
	t.Helper()
	if got := req.Query.Get(key); got != want {
		t.Errorf("query %s = %q, want %q", key, got, want)
	}
}

func TestBuildGetPipeline_AlwaysRequestsUsage(t *testing.T) {
	for _, name := range []string{"P", "build-and-test", "deploy.prod"} {
		t.Run(name, func(t *testing.T) {
			req, err := BuildGetPipeline("PRJ", name)
			checkRequest(t, req, err, http.MethodGet, "/project/PRJ/pipeline/"+name)
			checkQuery(t, req, "withApplications", "true")
			checkQuery(t, req, "withWorkflows", "true")
			checkQuery(t, req, "withEnvironments", "true")
			if req.Response != ResponseJSON {
				t.Errorf("Response = %s, want json", req.Response)
			}
		})
	}
}

func TestBuildPipelineCRUD(t *testing.T) {
	pip := domain.Pipeline{Name: "P2"}

	req, err := BuildListPipelines("PRJ")
	checkRequest(t, req, err, http.MethodGet, "/project/PRJ/pipeline")

	req, err = BuildCreatePipeline("PRJ", pip)
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline")
	if got := req.Header.Get("Content-Type"); got != contentTypeJSON {
		t.Errorf("Content-Type = %q, want %q", got, contentTypeJSON)
	}

	// The address keeps the old name, the body carries the new one.
	req, err = BuildUpdatePipeline("PRJ", "P", pip)
	checkRequest(t, req, err, http.MethodPut, "/project/PRJ/pipeline/P")
	var sent domain.Pipeline
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if sent.Name != "P2" {
		t.Errorf("body name = %q, want P2", sent.Name)
	}

	req, err = BuildDeletePipeline("PRJ", "P")
	checkRequest(t, req, err, http.MethodDelete, "/project/PRJ/pipeline/P")
	if req.Response != ResponseSuccess {
		t.Errorf("Response = %s, want success", req.Response)
	}

	req, err = BuildListApplications("PRJ", "P")
	checkRequest(t, req, err, http.MethodGet, "/project/PRJ/pipeline/P/application")

	req, err = BuildListAudits("PRJ", "P")
	checkRequest(t, req, err, http.MethodGet, "/project/PRJ/pipeline/P/audits")
}

func TestBuildImport_VerbAndAddressSwitchTogether(t *testing.T) {
	code := "name: P\nstages:\n- name: build\n"

	created, err := BuildCreateFromImport("PRJ", code, ImportOptions{})
	checkRequest(t, created, err, http.MethodPost, "/project/PRJ/import/pipeline")

	replaced, err := BuildReplaceFromImport("PRJ", "P", code, ImportOptions{})
	checkRequest(t, replaced, err, http.MethodPut, "/project/PRJ/import/pipeline/P")

	for _, r := range []*Request{created, replaced} {
		if string(r.Body) != code {
			t.Errorf("Body = %q, want raw source", r.Body)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-yaml" {
			t.Errorf("Content-Type = %q, want application/x-yaml", got)
		}
		checkQuery(t, r, "format", "yaml")
		checkQuery(t, r, "forceUpdate", "")
	}

	if _, err := BuildReplaceFromImport("PRJ", "", code, ImportOptions{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("replace with empty name error = %v, want invalid argument", err)
	}
}

func TestBuildImport_Force(t *testing.T) {
	req, err := BuildCreateFromImport("PRJ", "name: P", ImportOptions{Force: true})
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/import/pipeline")
	checkQuery(t, req, "forceUpdate", "true")
}

func TestBuildPreviewPipeline(t *testing.T) {
	req, err := BuildPreviewPipeline("PRJ", "name: P")
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/preview/pipeline")
	checkQuery(t, req, "format", "yaml")
	if got := req.Header.Get("Content-Type"); got != "application/x-yaml" {
		t.Errorf("Content-Type = %q, want application/x-yaml", got)
	}
	if req.Response != ResponseJSON {
		t.Errorf("Response = %s, want json", req.Response)
	}
}

func TestBuildExportPipeline(t *testing.T) {
	tests := []struct {
		name  string
		build func(key, name string) (*Request, error)
		path  string
	}{
		{name: "export", build: BuildExportPipeline, path: "/project/PRJ/export/pipeline/P"},
		{name: "pull", build: BuildPullPipeline, path: "/project/PRJ/pull/pipeline/P"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.build("PRJ", "P")
			checkRequest(t, req, err, http.MethodGet, tt.path)
			checkQuery(t, req, "format", "yaml")
			checkQuery(t, req, "withPermissions", "true")
			if req.Response != ResponseText {
				t.Errorf("Response = %s, want text", req.Response)
			}
			if req.Header.Get("Content-Type") != "" {
				t.Errorf("export must not send a Content-Type, got %q", req.Header.Get("Content-Type"))
			}
		})
	}
}

func TestBuildRollbackPipeline(t *testing.T) {
	req, err := BuildRollbackPipeline("PRJ", "P", 42)
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline/P/rollback/42")
	if req.Body != nil {
		t.Errorf("Body = %q, want empty", req.Body)
	}

	if _, err := BuildRollbackPipeline("PRJ", "P", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("rollback with audit 0 error = %v, want invalid argument", err)
	}
}

func TestBuildStageAndJob(t *testing.T) {
	stage := domain.Stage{ID: 7, Name: "build", BuildOrder: 2}

	req, err := BuildInsertStage("PRJ", "P", domain.Stage{Name: "build"})
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline/P/stage")

	req, err = BuildUpdateStage("PRJ", "P", stage)
	checkRequest(t, req, err, http.MethodPut, "/project/PRJ/pipeline/P/stage/7")

	req, err = BuildDeleteStage("PRJ", "P", 7)
	checkRequest(t, req, err, http.MethodDelete, "/project/PRJ/pipeline/P/stage/7")

	req, err = BuildMoveStage("PRJ", "P", stage)
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline/P/stage/move")

	job := domain.Job{PipelineActionID: 3, Action: domain.Action{Name: "compile"}}

	req, err = BuildAddJob("PRJ", "P", 7, domain.Job{Action: domain.Action{Name: "compile"}})
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline/P/stage/7/job")

	req, err = BuildUpdateJob("PRJ", "P", 7, job)
	checkRequest(t, req, err, http.MethodPut, "/project/PRJ/pipeline/P/stage/7/job/3")

	req, err = BuildDeleteJob("PRJ", "P", 7, 3)
	checkRequest(t, req, err, http.MethodDelete, "/project/PRJ/pipeline/P/stage/7/job/3")
}

func TestBuildParameter(t *testing.T) {
	req, err := BuildAddParameter("PRJ", "P", domain.Parameter{Name: "FOO"})
	checkRequest(t, req, err, http.MethodPost, "/project/PRJ/pipeline/P/parameter/FOO")

	req, err = BuildDeleteParameter("PRJ", "P", "FOO")
	checkRequest(t, req, err, http.MethodDelete, "/project/PRJ/pipeline/P/parameter/FOO")
}

func TestBuildUpdateParameter(t *testing.T) {
	tests := []struct {
		name     string
		change   ParameterChange
		path     string
		bodyName string
		rename   bool
	}{
		{
			name:     "rename addresses the previous name",
			change:   ParameterRename("old", domain.Parameter{Name: "new", Value: "v"}),
			path:     "/project/PRJ/pipeline/P/parameter/old",
			bodyName: "new",
			rename:   true,
		},
		{
			name:     "update addresses the current name",
			change:   ParameterUpdate(domain.Parameter{Name: "x", Value: "v"}),
			path:     "/project/PRJ/pipeline/P/parameter/x",
			bodyName: "x",
		},
		{
			name:     "rename to the same name",
			change:   ParameterRename("x", domain.Parameter{Name: "x"}),
			path:     "/project/PRJ/pipeline/P/parameter/x",
			bodyName: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildUpdateParameter("PRJ", "P", tt.change)
			checkRequest(t, req, err, http.MethodPut, tt.path)

			var sent domain.Parameter
			if err := json.Unmarshal(req.Body, &sent); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if sent.Name != tt.bodyName {
				t.Errorf("body name = %q, want %q", sent.Name, tt.bodyName)
			}
			if sent.Type != domain.ParameterTypeString {
				t.Errorf("body type = %q, want normalized %q", sent.Type, domain.ParameterTypeString)
			}
			if !tt.rename && req.Path != "/project/PRJ/pipeline/P/parameter/"+sent.Name {
				t.Errorf("in-place update addressed %q but sent name %q", req.Path, sent.Name)
			}
			if tt.change.IsRename() != tt.rename {
				t.Errorf("IsRename() = %v, want %v", tt.change.IsRename(), tt.rename)
			}
		})
	}
}

func TestBuild_InvalidArguments(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Request, error)
		param string
	}{
		{"empty project key", func() (*Request, error) { return BuildListPipelines("") }, "projectKey"},
		{"blank pipeline", func() (*Request, error) { return BuildGetPipeline("PRJ", "  ") }, "pipelineName"},
		{"slash in pipeline", func() (*Request, error) { return BuildDeletePipeline("PRJ", "a/b") }, "pipelineName"},
		{"empty old name", func() (*Request, error) { return BuildUpdatePipeline("PRJ", "", domain.Pipeline{Name: "P"}) }, "pipelineName"},
		{"stage without id", func() (*Request, error) { return BuildUpdateStage("PRJ", "P", domain.Stage{Name: "s"}) }, "stageID"},
		{"negative stage id", func() (*Request, error) { return BuildDeleteStage("PRJ", "P", -1) }, "stageID"},
		{"move without order", func() (*Request, error) { return BuildMoveStage("PRJ", "P", domain.Stage{ID: 1}) }, "buildOrder"},
		{"job without stage", func() (*Request, error) { return BuildAddJob("PRJ", "P", 0, domain.Job{}) }, "stageID"},
		{"job without action id", func() (*Request, error) { return BuildUpdateJob("PRJ", "P", 1, domain.Job{}) }, "actionID"},
		{"parameter without name", func() (*Request, error) { return BuildAddParameter("PRJ", "P", domain.Parameter{}) }, "parameterName"},
		{"rename without source", func() (*Request, error) {
			return BuildUpdateParameter("PRJ", "P", ParameterRename("", domain.Parameter{Name: "x"}))
		}, "parameterName"},
		{"rename to empty", func() (*Request, error) {
			return BuildUpdateParameter("PRJ", "P", ParameterRename("x", domain.Parameter{}))
		}, "name"},
		{"preview without project", func() (*Request, error) { return BuildPreviewPipeline("", "name: P") }, "projectKey"},
		{"export without name", func() (*Request, error) { return BuildExportPipeline("PRJ", "") }, "pipelineName"},
		{"dot pipeline", func() (*Request, error) { return BuildDeletePipeline("PRJ", ".") }, "pipelineName"},
		{"dot-dot pipeline", func() (*Request, error) { return BuildDeletePipeline("PRJ", "..") }, "pipelineName"},
		{"dot-dot project", func() (*Request, error) { return BuildListPipelines("..") }, "projectKey"},
		{"dot-dot parameter", func() (*Request, error) { return BuildDeleteParameter("PRJ", "P", "..") }, "parameterName"},
		{"padded pipeline", func() (*Request, error) { return BuildGetPipeline("PRJ", " P") }, "pipelineName"},
		{"padded parameter update", func() (*Request, error) {
			return BuildUpdateParameter("PRJ", "P", ParameterUpdate(domain.Parameter{Name: " FOO "}))
		}, "parameterName"},
		{"rename to padded name", func() (*Request, error) {
			return BuildUpdateParameter("PRJ", "P", ParameterRename("x", domain.Parameter{Name: "y "}))
		}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.build()
			if req != nil {
				t.Errorf("request = %+v, want nil", req)
			}
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("error = %v, want invalid argument", err)
			}
			var apiErr *domain.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not an *APIError", err)
			}
			if apiErr.Param != tt.param {
				t.Errorf("param = %q, want %q", apiErr.Param, tt.param)
			}
		})
	}
}

func TestRequest_URL(t *testing.T) {
	req, err := BuildGetPipeline("PRJ", "P")
	if err != nil {
		t.Fatal(err)
	}
	want := "http://cds/project/PRJ/pipeline/P?withApplications=true&withEnvironments=true&withWorkflows=true"
	if got := req.URL("http://cds"); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}

	req, _ = BuildListPipelines("PRJ")
	if got := req.URL("http://cds"); got != "http://cds/project/PRJ/pipeline" {
		t.Errorf("URL() without query = %q", got)
	}
}
