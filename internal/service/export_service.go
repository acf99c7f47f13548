package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-planner-api/internal/dto"
	"github.com/noah-isme/academic-planner-api/internal/models"
	"github.com/noah-isme/academic-planner-api/internal/viewmodel"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
	"github.com/noah-isme/academic-planner-api/pkg/export"
	"github.com/noah-isme/academic-planner-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportFile is an opened export ready to be streamed. Callers close File.
type ExportFile struct {
	Name        string
	ContentType string
	File        *os.File
}

// ExportService renders a student's assignments to CSV or PDF and hands out signed download links.
type ExportService struct {
	assignments assignmentLister
	courses     courseLister
	storage     fileStorage
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(assignments assignmentLister, courses courseLister, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		assignments: assignments,
		courses:     courses,
		storage:     files,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Export renders the user's assignments and stores the result.
func (s *ExportService) Export(ctx context.Context, session models.Session, rawFormat string) (*dto.ExportResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	format, ok := export.ParseFormat(rawFormat)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", rawFormat))
	}

	dataset, err := s.buildDataset(ctx, session)
	if err != nil {
		return nil, err
	}
	renderer := export.RendererFor(format)
	payload, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("render export failed", zap.String("user_id", session.UserID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	relPath, err := s.storage.Save(s.buildFilename(session.UserID, renderer.Extension()), payload)
	if err != nil {
		s.logger.Error("store export failed", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(session.UserID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("assignment export generated",
		zap.String("user_id", session.UserID),
		zap.String("path", relPath),
		zap.Int("rows", len(dataset.Rows)))

	return &dto.ExportResponse{
		URL:       fmt.Sprintf("%s/exports/download?token=%s", prefix, token),
		Token:     token,
		Format:    string(format),
		Rows:      len(dataset.Rows),
		ExpiresAt: expiresAt,
	}, nil
}

// Download validates a signed token and opens the export it points at.
func (s *ExportService) Download(token string) (*ExportFile, error) {
	if strings.TrimSpace(token) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download token required")
	}
	owner, relPath, expiresAt, err := s.signer.Parse(token, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if !strings.HasPrefix(relPath, owner+"/") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not match export owner")
	}
	if s.now().After(expiresAt) {
		return nil, appErrors.Clone(appErrors.ErrExportUnavailable, "export link expired")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrExportUnavailable, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return &ExportFile{Name: path.Base(relPath), ContentType: contentTypeFor(relPath), File: file}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// StartCleanup runs Cleanup every interval until ctx is cancelled.
func (s *ExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.Cleanup(0)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(deleted) > 0 {
					s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

func (s *ExportService) buildDataset(ctx context.Context, session models.Session) (export.Dataset, error) {
	assignments, err := s.assignments.ListByUser(ctx, session.UserID)
	if err != nil {
		s.logger.Error("load assignments for export failed", zap.String("user_id", session.UserID), zap.Error(err))
		return export.Dataset{}, storeError(err, "assignment not found", "failed to load assignments")
	}

	courseNames := map[string]string{}
	if s.courses != nil {
		courses, err := s.courses.ListByUser(ctx, session.UserID)
		if err != nil {
			// Course names are decorative; export without them.
			s.logger.Warn("load courses for export failed", zap.String("user_id", session.UserID), zap.Error(err))
		}
		for _, c := range courses {
			courseNames[c.ID] = c.CourseCode
		}
	}

	now := s.now()
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		course := ""
		if a.CourseID != nil {
			course = courseNames[*a.CourseID]
		}
		due := "Completed"
		if !a.IsCompleted() {
			due, _ = viewmodel.DueDateLabel(a.DueDate, now)
		}
		rows = append(rows, []string{
			a.Title,
			course,
			a.DueDate.UTC().Format("2006-01-02 15:04"),
			due,
			string(a.Priority),
			string(a.Status),
			strconv.Itoa(a.EstimatedHours),
		})
	}

	return export.Dataset{
		Title:       fmt.Sprintf("Assignments for %s", viewmodel.Greeting(session.Email)),
		GeneratedAt: now.UTC(),
		Headers:     []string{"Title", "Course", "Due Date", "Due", "Priority", "Status", "Hours"},
		Rows:        rows,
	}, nil
}

func (s *ExportService) buildFilename(userID, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/assignments_%s.%s", sanitizeFilename(userID), timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func contentTypeFor(relPath string) string {
	if strings.HasSuffix(relPath, "."+export.PDFRenderer{}.Extension()) {
		return export.PDFRenderer{}.ContentType()
	}
	return export.CSVRenderer{}.ContentType()
}
