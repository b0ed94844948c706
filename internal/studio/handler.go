// Package studio exposes the mockup pipeline over HTTP.
package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chromadish/internal/catalog"
	"chromadish/internal/events"
	"chromadish/internal/imaging"
	"chromadish/internal/media"
	"chromadish/internal/mockup"
	"chromadish/internal/storage"
)

const (
	// maxFormMemory leaves room for the text fields next to the largest upload.
	maxFormMemory = imaging.MaxUploadBytes + (1 << 20)
	// maxJSONBody bounds the variations request body.
	maxJSONBody = 64 << 10
)

// MockupGenerator produces one mockup from a normalized image.
type MockupGenerator interface {
	Generate(ctx context.Context, img imaging.Payload, cfg mockup.Config) (mockup.Result, error)
}

// VariationSuggester proposes alternative creative directions.
type VariationSuggester interface {
	Suggest(ctx context.Context, basePrompt string) ([]string, error)
}

// Handler serves the studio endpoints.
type Handler struct {
	Normalizer imaging.Normalizer
	Generator  MockupGenerator
	Suggester  VariationSuggester
	Store      storage.Store
	Uploader   media.Uploader
	Events     *events.Broker
	Log        zerolog.Logger
}

// MockupResponse is the body of a successful POST /api/mockups.
type MockupResponse struct {
	ID              string   `json:"id"`
	Image           string   `json:"image"`
	MIMEType        string   `json:"mime_type"`
	DownloadName    string   `json:"download_name"`
	Prompt          string   `json:"prompt"`
	StyleFallback   bool     `json:"style_fallback"`
	URL             string   `json:"url,omitempty"`
	Variations      []string `json:"variations,omitempty"`
	VariationsError string   `json:"variations_error,omitempty"`
}

type mockupForm struct {
	selection  catalog.Selection
	tag        string
	variations bool
	upload     imaging.Upload
	file       multipart.File
}

// Generate handles POST /api/mockups.
func (h Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.Generator == nil {
		writeError(w, fmt.Errorf("%w: generator not configured", mockup.ErrGenerationFailed))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	form, err := parseMockupForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer form.file.Close()

	cfg, err := form.selection.Resolve()
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.Normalizer.Normalize(form.upload)
	if err != nil {
		h.Log.Info().Err(err).Str("content_type", form.upload.ContentType).Msg("upload rejected")
		writeError(w, err)
		return
	}

	id := uuid.NewString()
	log := h.Log.With().Str("generation_id", id).Str("request_id", middleware.GetReqID(r.Context())).Logger()
	h.Events.Publish(events.Event{GenerationID: id, Status: events.StatusGenerating})
	started := time.Now()

	var (
		result        mockup.Result
		variations    []string
		variationsErr error
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		result, err = h.Generator.Generate(ctx, payload, cfg)
		return err
	})
	if form.variations && h.Suggester != nil {
		g.Go(func() error {
			// A failed suggestion never fails the mockup.
			variations, variationsErr = h.Suggester.Suggest(ctx, cfg.Prompt)
			return nil
		})
	}
	genErr := g.Wait()

	record := storage.Generation{
		ID:            id,
		Strictness:    cfg.Strictness,
		Band:          string(mockup.BandFor(cfg.Strictness)),
		BrandKit:      form.selection.BrandKit,
		ShotRecipe:    form.selection.ShotRecipe,
		BasePrompt:    cfg.Prompt,
		InputMIMEType: payload.MIMEType,
		DurationMS:    time.Since(started).Milliseconds(),
	}

	if genErr != nil {
		record.Status = storage.StatusFailed
		record.ErrorKind = mockup.Kind(genErr)
		h.record(r.Context(), log, record)
		h.Events.Publish(events.Event{GenerationID: id, Status: events.StatusError, Message: mockup.UserMessage(genErr)})
		log.Warn().Err(genErr).Str("kind", record.ErrorKind).Msg("mockup failed")
		writeError(w, genErr)
		return
	}

	downloadName := mockup.Filename(form.tag)
	stored := h.store(r.Context(), log, downloadName, result)

	record.Status = storage.StatusSucceeded
	record.Prompt = result.Composition.Prompt
	record.StyleFallback = result.Composition.Fallback
	record.MediaKey = stored.Key
	record.MediaURL = stored.URL
	h.record(r.Context(), log, record)
	h.Events.Publish(events.Event{GenerationID: id, Status: events.StatusSuccess})

	log.Info().
		Int("strictness", cfg.Strictness).
		Bool("style_fallback", result.Composition.Fallback).
		Int("bytes", len(result.Data)).
		Int64("duration_ms", record.DurationMS).
		Msg("mockup generated")

	resp := MockupResponse{
		ID:            id,
		Image:         result.DataURL(),
		MIMEType:      result.MIMEType,
		DownloadName:  downloadName,
		Prompt:        result.Composition.Prompt,
		StyleFallback: result.Composition.Fallback,
		URL:           stored.URL,
		Variations:    variations,
	}
	if variationsErr != nil {
		resp.VariationsError = mockup.UserMessage(variationsErr)
	}
	writeJSON(w, http.StatusOK, resp)
}

type variationsRequest struct {
	Prompt string `json:"prompt"`
	catalog.Selection
}

// Variations handles POST /api/variations.
func (h Handler) Variations(w http.ResponseWriter, r *http.Request) {
	if h.Suggester == nil {
		writeError(w, fmt.Errorf("%w: suggester not configured", mockup.ErrVariationFetchFailed))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req variationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, fmt.Errorf("%w: body over %d bytes", errRequestTooLarge, tooLarge.Limit))
			return
		}
		writeError(w, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		cfg, err := req.Selection.Resolve()
		if err != nil {
			writeError(w, err)
			return
		}
		prompt = cfg.Prompt
	}

	variations, err := h.Suggester.Suggest(r.Context(), prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"variations": variations})
}

func parseMockupForm(r *http.Request) (mockupForm, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return mockupForm{}, fmt.Errorf("%w: request body over %d bytes", imaging.ErrFileTooLarge, tooLarge.Limit)
		}
		return mockupForm{}, fmt.Errorf("%w: invalid multipart payload", errBadRequest)
	}

	form := mockupForm{
		selection: catalog.Selection{
			Perspective:  strings.TrimSpace(r.FormValue("perspective")),
			Setting:      strings.TrimSpace(r.FormValue("setting")),
			Plating:      strings.TrimSpace(r.FormValue("plating")),
			BrandKit:     strings.TrimSpace(r.FormValue("brand_kit")),
			ShotRecipe:   strings.TrimSpace(r.FormValue("shot_recipe")),
			Instructions: strings.TrimSpace(r.FormValue("instructions")),
		},
		tag: strings.TrimSpace(r.FormValue("tag")),
	}

	if raw := strings.TrimSpace(r.FormValue("strictness")); raw != "" {
		strictness, err := strconv.Atoi(raw)
		if err != nil {
			return mockupForm{}, fmt.Errorf("%w: %q", mockup.ErrInvalidStrictness, raw)
		}
		form.selection.Strictness = &strictness
	}
	if raw := strings.TrimSpace(r.FormValue("variations")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return mockupForm{}, fmt.Errorf("%w: variations must be true or false", errBadRequest)
		}
		form.variations = v
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return mockupForm{}, errMissingImage
		}
		return mockupForm{}, fmt.Errorf("%w: %v", imaging.ErrRead, err)
	}

	form.file = file
	form.upload = imaging.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return form, nil
}

// store keeps a copy of the mockup when an uploader is configured. The
// response still carries the inline image if this fails.
func (h Handler) store(ctx context.Context, log zerolog.Logger, name string, result mockup.Result) media.UploadResult {
	if h.Uploader == nil {
		return media.UploadResult{}
	}
	stored, err := h.Uploader.Upload(ctx, media.UploadInput{
		Filename:    name,
		ContentType: result.MIMEType,
		Body:        bytes.NewReader(result.Data),
		Size:        int64(len(result.Data)),
	})
	if err != nil {
		if !errors.Is(err, media.ErrUploaderDisabled) {
			log.Warn().Err(err).Msg("could not store mockup copy")
		}
		return media.UploadResult{}
	}
	return stored
}

func (h Handler) record(ctx context.Context, log zerolog.Logger, g storage.Generation) {
	if h.Store == nil {
		return
	}
	if _, err := h.Store.CreateGeneration(ctx, g); err != nil {
		log.Error().Err(err).Msg("could not record generation")
	}
}
