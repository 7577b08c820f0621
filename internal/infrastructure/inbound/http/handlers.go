package http

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/usecases"
)

type testAPIBody struct {
	Route   string            `json:"route"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
	Field   string            `json:"field"`
	Schema  json.RawMessage   `json:"schema"`
}

// schemaList decodes a schema given as an array of strings. Anything else
// means no schema.
func schemaList(raw json.RawMessage) []string {
	var fields []string
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	return fields
}

// dataBody is {"data": v}, or {} when the field did not resolve.
func dataBody(v jsonvalue.Value, found bool) map[string]any {
	if !found {
		return map[string]any{}
	}
	return map[string]any{"data": v}
}

func (s *Server) handleTestAPI(w http.ResponseWriter, r *http.Request) {
	var in testAPIBody
	if err := readJSON(r, &in); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	req := usecases.TestAPIRequest{
		Route:   in.Route,
		Method:  in.Method,
		Headers: in.Headers,
		Field:   in.Field,
		Schema:  schemaList(in.Schema),
	}
	if len(in.Body) > 0 {
		req.Body = []byte(in.Body)
	}

	res, err := s.testAPI.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, dataBody(res.Value, res.Found))
}

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.configs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, configs)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	// Only a lone name is accepted; full configs arrive through PUT.
	var in map[string]json.RawMessage
	if err := readJSON(r, &in); err != nil || len(in) != 1 {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}
	var name string
	if err := json.Unmarshal(in["name"], &name); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	id, err := s.configs.CreateDraft(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	cfg, err := s.configs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	var patch requestconfig.Patch
	if err := readJSON(r, &patch); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}
	if err := s.configs.Update(r.Context(), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	if err := s.configs.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleRunConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	var in struct {
		Selections map[string]int `json:"selections"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	res, err := s.run.Execute(r.Context(), id, in.Selections)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := dataBody(res.Value, res.Found)
	body["status"] = res.UpstreamStatus
	body["history_id"] = res.HistoryID
	writeJSON(w, body)
}

func (s *Server) handleBatchRun(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, errorBody("Not found"))
		return
	}
	var in struct {
		Variable string `json:"variable"`
	}
	if err := readJSON(r, &in); err != nil || strings.TrimSpace(in.Variable) == "" {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	res, err := s.batch.Execute(r.Context(), id, in.Variable)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleListDatalists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.datalists.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, lists)
}

func (s *Server) handleCreateDatalist(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	id, err := s.datalists.Create(r.Context(), in.Name, in.Values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"success": true, "id": id})
}

func (s *Server) handleImportDatalist(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	q := r.URL.Query()

	id, count, err := s.datalists.ImportCSV(r.Context(), q.Get("name"), q.Get("column"),
		http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"success": true, "id": id, "count": count})
}

func (s *Server) handleCSVColumns(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	columns, err := s.datalists.CSVColumns(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"columns": columns})
}

func (s *Server) handleGetDatalist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, errorBody("Invalid datalist id"))
		return
	}
	values, err := s.datalists.Entries(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, values)
}

func (s *Server) handleDeleteDatalist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, errorBody("Invalid datalist id"))
		return
	}
	if err := s.datalists.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleEngines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"engines": s.prompts.Engines(),
		"default": s.prompts.DefaultEngine(),
	})
}

func (s *Server) handlePromptPreview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Engine   string            `json:"engine"`
		Template string            `json:"template"`
		Vars     map[string]string `json:"vars"`
		Fields   map[string]any    `json:"fields"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(usecases.ErrInvalidRequest.Error()))
		return
	}

	rendered, err := s.prompts.Render(in.Engine, in.Template, ports.PromptInput{Vars: in.Vars, Fields: in.Fields})
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, map[string]any{
		"rendered":  rendered,
		"variables": requestconfig.DetectVariables(in.Template),
	})
}
