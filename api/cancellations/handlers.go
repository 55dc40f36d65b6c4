package cancellations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"CancelDash/api"
	"CancelDash/api/constants"
	"CancelDash/api/utils"
	"CancelDash/internal/config"
	"CancelDash/internal/dataset"
	"CancelDash/internal/pipeline"
	"CancelDash/internal/sheet"
)

// EventStream serves the live update stream.
type EventStream interface {
	HandleSSE(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	store   *dataset.Store
	exports *dataset.Exports
	events  EventStream
	now     func() time.Time
}

func NewHandler(store *dataset.Store, exports *dataset.Exports, events EventStream) *Handler {
	return &Handler{
		store:   store,
		exports: exports,
		events:  events,
		now:     time.Now,
	}
}

// respondWithErr maps pipeline and dataset errors onto HTTP statuses.
func respondWithErr(w http.ResponseWriter, err error) {
	var (
		missing  *pipeline.MissingColumnError
		invalid  *pipeline.ValidationError
		parse    *pipeline.ParseError
		notFound *pipeline.NotFoundError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid), errors.As(err, &parse):
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		api.RespondWithError(w, http.StatusNotFound, constants.ErrRecordNotFound+": "+err.Error())
	case errors.Is(err, dataset.ErrNoDataset):
		api.RespondWithError(w, http.StatusNotFound, constants.ErrNoDataAvailable)
	default:
		api.LogError("unexpected error", "error", err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
	}
}

func (h *Handler) stamp() string {
	return h.now().Format(constants.FileStampFormat)
}

// Upload handles POST /dashboard/upload with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.RespondWithError(w, http.StatusRequestEntityTooLarge, constants.ErrFileTooLarge)
			return
		}
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileSent)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileSent)
		return
	}
	defer file.Close()

	name := filepath.Base(strings.TrimSpace(header.Filename))
	if name == "" || name == "." {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileSelected)
		return
	}
	if !sheet.Allowed(name) {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileTypeNotAllowed)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFileSent)
		return
	}
	if len(data) == 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyFile)
		return
	}

	raw, err := sheet.Parse(name, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, sheet.ErrEmptySheet) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyFile)
			return
		}
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileParsingFailed+": "+err.Error())
		return
	}
	table, err := pipeline.Normalize(raw)
	if err != nil {
		respondWithErr(w, err)
		return
	}

	snap := h.store.Replace(table, fmt.Sprintf("%s_%s", h.stamp(), name), int64(len(data)))
	api.LogInfo("report uploaded", "filename", snap.Filename, "rows", table.Len(), "bytes", len(data))

	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"message":  constants.FormatError(constants.SuccessUploaded, table.Len()),
		"data":     pipeline.Aggregate(table),
		"metadata": snap,
	})
}

// Data handles GET /dashboard/data.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Current()
	if err != nil {
		respondWithErr(w, err)
		return
	}
	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"data":     pipeline.Aggregate(snap.Table),
		"metadata": snap,
	})
}

// dateFilter is the body of the filter and export requests. The data_inicio
// and data_fim keys are accepted for older dashboard clients.
type dateFilter struct {
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	DataInicio string `json:"data_inicio"`
	DataFim    string `json:"data_fim"`
}

// bounds parses the range. A date-only end covers that whole day.
func (f dateFilter) bounds() (start, end *time.Time, err error) {
	startText := firstNonEmpty(f.StartDate, f.DataInicio)
	endText := firstNonEmpty(f.EndDate, f.DataFim)

	if startText != "" {
		s, ok := parseBound(startText, false)
		if !ok {
			return nil, nil, errors.New(constants.FormatDateError("start_date"))
		}
		start = &s
	}
	if endText != "" {
		e, ok := parseBound(endText, true)
		if !ok {
			return nil, nil, errors.New(constants.FormatDateError("end_date"))
		}
		end = &e
	}
	return start, end, nil
}

func parseBound(s string, endOfDay bool) (time.Time, bool) {
	if d, err := time.Parse(constants.DateFormat, strings.TrimSpace(s)); err == nil {
		if endOfDay {
			d = d.Add(24*time.Hour - time.Nanosecond)
		}
		return d, true
	}
	return pipeline.ParseDate(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// decodeFilter reads an optional JSON filter body.
func decodeFilter(r *http.Request) (dateFilter, error) {
	var f dateFilter
	if r.Body == nil {
		return f, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return f, err
	}
	return f, nil
}

func (h *Handler) filtered(r *http.Request) (pipeline.Table, int, string) {
	f, err := decodeFilter(r)
	if err != nil {
		return pipeline.Table{}, http.StatusBadRequest, constants.ErrInvalidJSONShort
	}
	start, end, err := f.bounds()
	if err != nil {
		return pipeline.Table{}, http.StatusBadRequest, err.Error()
	}
	snap, err := h.store.Current()
	if err != nil {
		return pipeline.Table{}, http.StatusNotFound, constants.ErrNoDataAvailable
	}
	return pipeline.FilterByDate(snap.Table, start, end), 0, ""
}

// Filter handles POST /dashboard/data/filter.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	table, status, msg := h.filtered(r)
	if status != 0 {
		api.RespondWithError(w, status, msg)
		return
	}
	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"data": pipeline.Aggregate(table),
	})
}

// Export handles POST /dashboard/export. The workbook is kept in memory and
// served by Download until its token expires.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	table, status, msg := h.filtered(r)
	if status != 0 {
		api.RespondWithError(w, status, msg)
		return
	}

	data, err := sheet.WriteWorkbook(table, pipeline.Aggregate(table))
	if err != nil {
		api.LogError("export failed", "error", err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrExportFailed)
		return
	}
	filename := fmt.Sprintf("%s_%s.xlsx", config.ExportFilePrefix, h.stamp())
	token := h.exports.Put(filename, data)
	api.LogInfo("export created", "filename", filename, "rows", table.Len())

	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"message":      constants.SuccessExported,
		"download_url": constants.DownloadPath + token,
		"filename":     filename,
	})
}

// Download handles GET /dashboard/download/{token}.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.exports.Get(mux.Vars(r)["token"])
	if !ok {
		api.RespondWithError(w, http.StatusNotFound, constants.ErrExportNotFound)
		return
	}
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeXLSX)
	w.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Data)
}

// legacyFields maps the field names older dashboard forms send.
var legacyFields = map[string]string{
	"regional":             pipeline.FieldRegion,
	"cancelamento_inicial": pipeline.FieldInitialCancellation,
	"reversao":             pipeline.FieldReversal,
	"cancelamento_final":   pipeline.FieldFinalCancellation,
	"total_pedido":         pipeline.FieldOrderTotal,
	"data":                 pipeline.FieldDate,
	"numero_pedido":        pipeline.FieldOrderNumber,
	"restaurante":          pipeline.FieldRestaurant,
	"origem_cancelamento":  pipeline.FieldCancellationOrigin,
	"motivo_cancelamento":  pipeline.FieldCancellationReason,
	"canal_venda":          pipeline.FieldSalesChannel,
}

// canonicalKeys renames legacy keys. An explicit canonical key wins over its
// legacy alias.
func canonicalKeys[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		if canonical, ok := legacyFields[k]; ok {
			if _, explicit := in[canonical]; explicit {
				continue
			}
			k = canonical
		}
		out[k] = v
	}
	return out
}

func decodeNewRow(body io.Reader) (pipeline.NewRow, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return pipeline.NewRow{}, err
	}
	normalized, err := json.Marshal(canonicalKeys(fields))
	if err != nil {
		return pipeline.NewRow{}, err
	}
	var row pipeline.NewRow
	if err := json.Unmarshal(normalized, &row); err != nil {
		return pipeline.NewRow{}, err
	}
	return row, nil
}

// ManualAdd handles POST /dashboard/manual/add.
func (h *Handler) ManualAdd(w http.ResponseWriter, r *http.Request) {
	row, err := decodeNewRow(r.Body)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestBody+": "+err.Error())
		return
	}

	snap, err := h.store.Mutate(h.stamp()+"_manual_update", true, func(t pipeline.Table) (pipeline.Table, error) {
		return pipeline.Append(t, row)
	})
	if err != nil {
		respondWithErr(w, err)
		return
	}
	api.LogInfo("row added", "rows", snap.Table.Len())

	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"message":  constants.SuccessAdded,
		"data":     pipeline.Aggregate(snap.Table),
		"metadata": snap,
	})
}

// ManualUpdate handles PUT /dashboard/manual/update/{row}.
func (h *Handler) ManualUpdate(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["row"])
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRowIndex)
		return
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var updates map[string]any
	if err := dec.Decode(&updates); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSONShort)
		return
	}

	snap, err := h.store.Mutate(h.stamp()+"_manual_update", false, func(t pipeline.Table) (pipeline.Table, error) {
		return pipeline.Update(t, index, canonicalKeys(updates))
	})
	if err != nil {
		respondWithErr(w, err)
		return
	}
	api.LogInfo("row updated", "row", index)

	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"message":  constants.SuccessUpdated,
		"data":     pipeline.Aggregate(snap.Table),
		"metadata": snap,
	})
}

// History handles GET /dashboard/history, newest first, paged with page and
// limit query parameters.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	page, err := utils.ExtractPagination(r)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	history := h.store.History()
	page.SetPaginationStats(len(history))
	start, end := page.Window(len(history))

	api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
		"history":    history[start:end],
		"pagination": page,
	})
}

// Events handles GET /dashboard/events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.events.HandleSSE(w, r)
}

func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Hello from Cancellation Dashboard Service"))
}
