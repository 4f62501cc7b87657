package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/export"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/filesize"
)

// BackupService handles full-dataset interchange: JSON export, JSON import,
// and the tabular resource catalog for printing.
type BackupService struct {
	dal    *dal.DAL
	store  store.Store
	logger *zap.Logger
	pdf    *export.PDFExporter
	csv    *export.CSVExporter
}

// NewBackupService constructs a BackupService instance.
func NewBackupService(d *dal.DAL, st store.Store, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		dal:    d,
		store:  st,
		logger: logger,
		pdf:    export.NewPDFExporter(),
		csv:    export.NewCSVExporter(),
	}
}

// Export gathers every collection plus the singletons into one versioned
// document.
func (s *BackupService) Export(ctx context.Context) (*models.Backup, error) {
	subjects, err := s.dal.GetSubjects(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := s.dal.GetResources(ctx, models.ResourceFilter{})
	if err != nil {
		return nil, err
	}
	publications, err := s.dal.GetPublications(ctx, 0)
	if err != nil {
		return nil, err
	}
	schoolInfo, err := s.dal.GetSchoolInfo(ctx)
	if err != nil {
		return nil, err
	}
	themeConfig, err := s.dal.GetThemeConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Backup{
		Version:      models.BackupVersion,
		ExportedAt:   time.Now().UTC(),
		Subjects:     subjects,
		Resources:    resources,
		Publications: publications,
		SchoolInfo:   &schoolInfo,
		ThemeConfig:  &themeConfig,
	}, nil
}

// Import applies a backup document by upserting every record under its
// original id. Validation happens entirely before the first write; the
// writes themselves are not transactional, so a mid-import failure leaves
// the documents applied so far committed. The error reports how far it got.
func (s *BackupService) Import(ctx context.Context, payload []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidBackup, "el archivo no es un JSON válido")
	}
	for _, key := range []string{"version", "subjects", "resources", "publications"} {
		if _, ok := raw[key]; !ok {
			return appErrors.Clone(appErrors.ErrInvalidBackup, fmt.Sprintf("falta el campo %q en el archivo", key))
		}
	}

	var backup models.Backup
	if err := json.Unmarshal(payload, &backup); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidBackup, "estructura de respaldo inválida")
	}
	if backup.Version == "" {
		return appErrors.Clone(appErrors.ErrInvalidBackup, "falta la versión del respaldo")
	}

	applied := 0
	upsert := func(collection, id string, value interface{}) error {
		if id == "" {
			return appErrors.Clone(appErrors.ErrInvalidBackup, fmt.Sprintf("documento sin id en %s", collection))
		}
		doc, err := store.Encode(value)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup document")
		}
		if err := s.store.Set(ctx, collection, id, doc, false); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("import failed after %d documents", applied))
		}
		applied++
		return nil
	}

	for _, subject := range backup.Subjects {
		if err := upsert(store.CollectionSubjects, subject.ID, subject); err != nil {
			s.invalidateAfter(applied)
			return err
		}
	}
	for _, resource := range backup.Resources {
		if err := upsert(store.CollectionResources, resource.ID, resource); err != nil {
			s.invalidateAfter(applied)
			return err
		}
	}
	for _, publication := range backup.Publications {
		if err := upsert(store.CollectionPublications, publication.ID, publication); err != nil {
			s.invalidateAfter(applied)
			return err
		}
	}

	// singletons go last so a partial import never leaves new entities under
	// an old site configuration
	if backup.SchoolInfo != nil {
		if err := upsert(store.CollectionConfig, store.DocSchoolInfo, backup.SchoolInfo); err != nil {
			s.invalidateAfter(applied)
			return err
		}
	}
	if backup.ThemeConfig != nil {
		if err := upsert(store.CollectionConfig, store.DocThemes, backup.ThemeConfig); err != nil {
			s.invalidateAfter(applied)
			return err
		}
	}

	s.dal.Invalidate()
	s.logger.Info("backup imported", zap.Int("documents", applied), zap.String("version", backup.Version))
	return nil
}

func (s *BackupService) invalidateAfter(applied int) {
	if applied > 0 {
		s.dal.Invalidate()
	}
}

// CatalogPDF renders the resource catalog as a printable table.
func (s *BackupService) CatalogPDF(ctx context.Context) ([]byte, error) {
	data, err := s.catalogDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, "Catálogo de Recursos")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render catalog pdf")
	}
	return out, nil
}

// CatalogCSV renders the same catalog for spreadsheets.
func (s *BackupService) CatalogCSV(ctx context.Context) ([]byte, error) {
	data, err := s.catalogDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render catalog csv")
	}
	return out, nil
}

func (s *BackupService) catalogDataset(ctx context.Context) (export.Dataset, error) {
	subjects, err := s.dal.GetSubjects(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	resources, err := s.dal.GetResources(ctx, models.ResourceFilter{})
	if err != nil {
		return export.Dataset{}, err
	}

	names := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		names[subject.ID] = subject.Name
	}

	rows := make([]map[string]string, 0, len(resources))
	for _, r := range resources {
		subjectName := names[r.SubjectID]
		if subjectName == "" {
			subjectName = r.SubjectID
		}
		rows = append(rows, map[string]string{
			"Materia":   subjectName,
			"Título":    r.Title,
			"Tipo":      r.Type,
			"Tamaño":    filesize.Format(r.Size),
			"Descargas": fmt.Sprintf("%d", r.Downloads),
		})
	}

	return export.Dataset{
		Headers: []string{"Materia", "Título", "Tipo", "Tamaño", "Descargas"},
		Rows:    rows,
	}, nil
}
