// Package cadastro contains the HTTP handlers for the cadastro resource.
//
// Every handler is a factory: it receives its dependencies once at
// start-up and returns the http.HandlerFunc the router calls on every
// request.
//
//	router.HandleFunc("POST /api/v1/cadastro", cadastro.New(engine))
//
// Write operations never touch the store directly. They build a
// workflow.Request, run it through the engine and translate the
// resulting status code and message into the response.
package cadastro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mls-workflow/cadastro-api/internal/storage"
	"github.com/mls-workflow/cadastro-api/internal/types"
	"github.com/mls-workflow/cadastro-api/internal/utils/response"
	"github.com/mls-workflow/cadastro-api/internal/validation"
	"github.com/mls-workflow/cadastro-api/internal/workflow"
)

// Engine is the part of *workflow.Engine the handlers use.
type Engine interface {
	Execute(ctx context.Context, req workflow.Request, businessKey string) workflow.Instance
	Instance(id string) (workflow.Instance, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/v1/cadastro
// Creates a record from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Jane Doe", "email": "jane@example.com", "age": 25 }
//
// Success response (201 Created, Location: /api/v1/cadastro/1):
//
//	{ "id": 1, "name": "Jane Doe", "email": "jane@example.com", "age": 25 }
//
// Error responses:
//
//	400 Bad Request   empty body, malformed JSON, or failed validation
//	500 Internal      store error, details only in the log
//
// ─────────────────────────────────────────────────────────────────────────────
func New(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a record")

		// ── Step 1: Decode JSON body ──────────────────────────────────
		var req types.CreateRequest
		if !decode(w, r, &req) {
			return
		}

		// ── Step 2: Validate ──────────────────────────────────────────
		// Every failed field is reported, not just the first one.
		if err := validation.Struct(req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validation.Messages(err)))
			return
		}

		// ── Step 3: Run the CREATE instance ───────────────────────────
		inst := engine.Execute(r.Context(), workflow.Request{
			Operation: string(workflow.OpCreate),
			Payload:   req.Payload(),
		}, "")

		if inst.Result.StatusCode == http.StatusCreated && inst.Result.Record != nil {
			w.Header().Set("Location", fmt.Sprintf("%s/%d", r.URL.Path, inst.Result.Record.ID))
		}
		writeResult(w, inst.Result)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/v1/cadastro/{id}
// 200 with the record, 404 when no row has that id, 400 for a
// non-integer id.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a record", slog.Int64("id", id))

		inst := engine.Execute(r.Context(), workflow.Request{
			Operation: string(workflow.OpRead),
			ID:        &id,
		}, "")
		writeResult(w, inst.Result)
	}
}

// GetList handles GET /api/v1/cadastro and returns every record.
//
// Listing is not one of the four process operations, so it reads the
// store directly. Returns [] (not null) when the table is empty.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all records")

		records, err := store.ListRecords(r.Context())
		if err != nil {
			slog.Error("error listing records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.InternalError())
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/v1/cadastro/{id}
//
// Only the fields present in the body are changed:
//
//	{ "age": 26 }
//
// 200 with the merged record, 404, or 400 when no field is given or a
// field is invalid.
// ─────────────────────────────────────────────────────────────────────────────
func Update(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a record", slog.Int64("id", id))

		var req types.UpdateRequest
		if !decode(w, r, &req) {
			return
		}

		// The at-least-one rule runs as a struct-level validation, so an
		// empty body shows up as errors.payload.
		if err := validation.Struct(req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validation.Messages(err)))
			return
		}

		payload := req.Payload
		inst := engine.Execute(r.Context(), workflow.Request{
			Operation: string(workflow.OpUpdate),
			ID:        &id,
			Payload:   &payload,
		}, "")
		writeResult(w, inst.Result)
	}
}

// Delete handles DELETE /api/v1/cadastro/{id}: 204 or 404.
func Delete(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a record", slog.Int64("id", id))

		inst := engine.Execute(r.Context(), workflow.Request{
			Operation: string(workflow.OpDelete),
			ID:        &id,
		}, "")
		writeResult(w, inst.Result)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// StartProcess handles the deprecated POST /api/cadastro/process.
//
//	{ "operation": "update", "id": 1, "payload": { "age": 36 } }
//
// The instance runs to completion before the response is written, but
// the caller only receives 202 with the instance id and business key;
// the outcome is fetched with GetProcess. Requests rejected before any
// store call (bad operation, missing id or payload, invalid or missing
// payload fields) get a 400 directly.
// ─────────────────────────────────────────────────────────────────────────────
func StartProcess(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("the /api/cadastro/process endpoint is deprecated, use /api/v1/cadastro")

		var req types.ProcessRequest
		if !decode(w, r, &req) {
			return
		}
		// ── Step 1: Conditional rules ─────────────────────────────────
		// id and payload requirements depend on the operation; an
		// unknown operation is left to the dispatcher in step 3.
		if errs := validation.Process(req); len(errs) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(errs))
			return
		}

		// ── Step 2: Run the instance ──────────────────────────────────
		inst := engine.Execute(r.Context(), workflow.Request{
			Operation: req.Operation,
			ID:        req.ID,
			Payload:   req.Payload,
		}, "")

		// ── Step 3: Dispatcher rejection ──────────────────────────────
		// No operation was identified, so nothing ran: answer 400 now.
		if inst.Operation == "" {
			response.WriteJSON(w, inst.Result.StatusCode, response.Message(inst.Result.Message))
			return
		}

		response.WriteJSON(w, http.StatusAccepted, types.ProcessResponse{
			ProcessInstanceID: inst.ID,
			BusinessKey:       inst.BusinessKey,
		})
	}
}

// GetProcess handles GET /api/cadastro/process/{instanceId} and returns
// the finished instance with its status code, message and result.
func GetProcess(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instanceID := r.PathValue("instanceId")

		inst, err := engine.Instance(instanceID)
		if errors.Is(err, workflow.ErrInstanceNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			slog.Error("error getting process instance",
				slog.String("instance_id", instanceID),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.InternalError())
			return
		}

		response.WriteJSON(w, http.StatusOK, inst)
	}
}

// writeResult maps an instance result onto the response: the record for
// 200/201, an empty body for 204, the error envelope otherwise.
func writeResult(w http.ResponseWriter, res workflow.Result) {
	switch {
	case res.StatusCode == http.StatusNoContent:
		w.WriteHeader(http.StatusNoContent)
	case res.StatusCode < 300 && res.Record != nil:
		response.WriteJSON(w, res.StatusCode, res.Record)
	case res.StatusCode >= 500:
		response.WriteJSON(w, res.StatusCode, response.InternalError())
	default:
		response.WriteJSON(w, res.StatusCode, response.Message(res.Message))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}
