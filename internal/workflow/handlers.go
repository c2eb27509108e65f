package workflow

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mls-workflow/cadastro-api/internal/storage"
	"github.com/mls-workflow/cadastro-api/internal/types"
)

// Request is the typed input of a process instance.
type Request struct {
	Operation string         `json:"operation"`
	ID        *int64         `json:"id,omitempty"`
	Payload   *types.Payload `json:"payload,omitempty"`
}

// Result is the typed output of a process instance. Record is set only
// for 200 and 201.
type Result struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Record     *types.Record `json:"result,omitempty"`
}

const (
	msgCreated       = "resource created successfully"
	msgFound         = "resource found"
	msgUpdated       = "resource updated successfully"
	msgDeleted       = "resource deleted successfully"
	msgNotFound      = "resource not found"
	msgInternalError = "internal server error"
)

func badRequest(msg string) Result {
	return Result{StatusCode: http.StatusBadRequest, Message: msg}
}

func notFound() Result {
	return Result{StatusCode: http.StatusNotFound, Message: msgNotFound}
}

func internalError(log *slog.Logger, op string, err error) Result {
	log.Error("store call failed", slog.String("call", op), slog.String("error", err.Error()))
	return Result{StatusCode: http.StatusInternalServerError, Message: msgInternalError}
}

func handleCreate(ctx context.Context, s storage.Storage, log *slog.Logger, req Request) Result {
	if req.Payload == nil {
		return badRequest("payload is missing for CREATE operation")
	}

	rec, err := req.Payload.Record()
	if err != nil {
		return badRequest(err.Error() + " for CREATE operation")
	}

	id, err := s.CreateRecord(ctx, rec)
	if err != nil {
		return internalError(log, "CreateRecord", err)
	}
	rec.ID = id

	log.Info("record created", slog.Int64("id", id))
	return Result{StatusCode: http.StatusCreated, Message: msgCreated, Record: &rec}
}

func handleRead(ctx context.Context, s storage.Storage, log *slog.Logger, req Request) Result {
	if req.ID == nil {
		return badRequest("id is missing for READ operation")
	}

	rec, ok, err := s.GetRecordByID(ctx, *req.ID)
	if err != nil {
		return internalError(log, "GetRecordByID", err)
	}
	if !ok {
		log.Warn("record not found", slog.Int64("id", *req.ID))
		return notFound()
	}

	return Result{StatusCode: http.StatusOK, Message: msgFound, Record: &rec}
}

// handleUpdate merges the provided payload fields into the stored record.
//
// The read and the write are two autocommitted statements: a concurrent
// update landing between them is overwritten (lost update).
func handleUpdate(ctx context.Context, s storage.Storage, log *slog.Logger, req Request) Result {
	if req.ID == nil || req.Payload == nil {
		return badRequest("id or payload is missing for UPDATE operation")
	}
	id := *req.ID

	existing, ok, err := s.GetRecordByID(ctx, id)
	if err != nil {
		return internalError(log, "GetRecordByID", err)
	}
	if !ok {
		log.Warn("record not found", slog.Int64("id", id))
		return notFound()
	}

	merged := req.Payload.MergeInto(existing)
	merged.ID = id

	ok, err = s.UpdateRecordByID(ctx, id, merged)
	if err != nil {
		return internalError(log, "UpdateRecordByID", err)
	}
	if !ok {
		log.Warn("record vanished before update", slog.Int64("id", id))
		return notFound()
	}

	log.Info("record updated", slog.Int64("id", id))
	return Result{StatusCode: http.StatusOK, Message: msgUpdated, Record: &merged}
}

func handleDelete(ctx context.Context, s storage.Storage, log *slog.Logger, req Request) Result {
	if req.ID == nil {
		return badRequest("id is missing for DELETE operation")
	}

	ok, err := s.DeleteRecordByID(ctx, *req.ID)
	if err != nil {
		return internalError(log, "DeleteRecordByID", err)
	}
	if !ok {
		log.Warn("record not found", slog.Int64("id", *req.ID))
		return notFound()
	}

	log.Info("record deleted", slog.Int64("id", *req.ID))
	return Result{StatusCode: http.StatusNoContent, Message: msgDeleted}
}
