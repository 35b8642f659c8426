package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/AviationCompliance/internal/adapter"
	"github.com/akolanti/AviationCompliance/internal/adapter/utils"
	"github.com/akolanti/AviationCompliance/internal/api"
	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

type newJobData struct {
	id               string
	chatId           string
	message          string
	documentType     string
	isNewChat        bool
	traceId          string
	isDocumentIngest bool
	documentName     string
	documentSource   string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Start a new chat job
// @Description  Accepts a message and an optional document_type filter, queues a background job and returns its ID.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Chat message, optional chat ID and document type"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data, chat ID or document type"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remoteAddr", request.RemoteAddr)
		return
	}
	defer request.Body.Close()

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if ok, reason := ValidateChatRequest(request.Context(), requestData); !ok {
		logRH.Warn("Bad Chat Request", "reason", reason, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, reason)
		return
	}

	newJob := newJobData{
		id:           utils.GetNewUUID(),
		chatId:       requestData.ChatID,
		message:      requestData.Message,
		documentType: requestData.DocumentType,
		traceId:      traceIdOf(request.Context()),
	}
	if newJob.chatId == "" {
		newJob.chatId = utils.GetNewUUID()
		newJob.isNewChat = true
	}
	queueJob(w, request, newJob)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a chat or ingestion job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceIdOf(r.Context()))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, rejects formats no reader handles, stores it in the upload directory and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  false  "Display name of the document, defaults to the uploaded file name"
// @Param        file           formData  file    true   "The document (docx, pdf, xlsx, html, txt, md, odt, rtf)"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields"
// @Failure      413  {object}  api.JobResponse "File too large"
// @Failure      415  {object}  api.JobResponse "Unsupported document format"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remoteAddr", r.RemoteAddr)
		return
	}
	docs := documentsInstance()
	if docs == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Ingestion unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "", "File too large")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad multipart request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile(config.UploadFormField)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	// keep the uploaded name, the classifier falls back to it
	baseName := filepath.Base(filepath.Clean("/" + fileMetadata.Filename))
	if baseName == "/" || baseName == "." {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Missing file name")
		return
	}
	docName := r.FormValue("document_name")
	if docName == "" {
		docName = baseName
	}
	jobId := utils.GetNewUUID()
	tempFilePath, errString := storeUpload(docs.uploadDir, jobId, baseName, fileReader)
	if errString != "" {
		logRH.Error("Couldn't store upload", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, errString)
		return
	}

	// without an extension match only the stored bytes can tell the format
	if !docs.registry.Supports(baseName) {
		if _, err := docs.registry.ReaderFor(tempFilePath); err != nil {
			_ = os.RemoveAll(filepath.Dir(tempFilePath))
			logRH.Warn("Unsupported upload", "filename", baseName)
			WriteErrorResponse(w, http.StatusUnsupportedMediaType, docName, "Unsupported document format")
			return
		}
	}

	queueJob(w, r, newJobData{
		id:               jobId,
		traceId:          traceIdOf(r.Context()),
		isDocumentIngest: true,
		documentName:     docName,
		documentSource:   tempFilePath,
	})
}

func storeUpload(uploadDir, jobId, name string, src io.Reader) (string, string) {
	targetDir := filepath.Join(uploadDir, jobId)
	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return "", "Storage error"
	}
	path := filepath.Join(targetDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", "Storage error"
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.RemoveAll(targetDir)
		return "", "Write error"
	}
	return path, ""
}

func queueJob(w http.ResponseWriter, r *http.Request, newJob newJobData) {
	ctx := context.WithValue(r.Context(), config.TRACE_ID_KEY, newJob.traceId)
	if err := CreateNewJob(ctx, newJob); err != nil {
		logRH.Warn("Job was not queued", "jobId", newJob.id, "err", err)
		if newJob.isDocumentIngest {
			_ = os.RemoveAll(filepath.Dir(newJob.documentSource))
		}
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.id, "Server busy, retry later")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}
