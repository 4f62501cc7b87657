// Package dal is the single point of truth for reading and writing the site
// collections. It keeps one short-lived snapshot per cached collection and
// invalidates it after every mutation performed through it, so a read
// following a write through this layer is never stale. Canonical state stays
// in the store; the cache only trades staleness for round-trips.
package dal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/store"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/filesize"
)

// snapshot states are explicit: an invalid snapshot is different from a
// legitimately empty collection.
type subjectSnapshot struct {
	valid bool
	items []models.Subject
}

type publicationSnapshot struct {
	valid bool
	items []models.Publication
}

type schoolSnapshot struct {
	valid bool
	info  models.SchoolInfo
}

type themeSnapshot struct {
	valid bool
	cfg   models.ThemeConfig
}

// DAL mediates all reads and writes to the four entity collections.
// Resources are deliberately not cached: they are queried with varying
// filter combinations, and caching a filtered result under an unfiltered key
// would be unsound.
// CacheObserver counts snapshot hits and misses. Nil means no accounting.
type CacheObserver interface {
	RecordCacheOperation(hit bool)
}

type DAL struct {
	store      store.Store
	validator  *validator.Validate
	logger     *zap.Logger
	schoolName string
	observer   CacheObserver

	mu           sync.Mutex
	subjects     subjectSnapshot
	publications publicationSnapshot
	school       schoolSnapshot
	theme        themeSnapshot
}

// New constructs the data-access layer. schoolName is the default
// publication author.
func New(st store.Store, validate *validator.Validate, logger *zap.Logger, schoolName string) *DAL {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if schoolName == "" {
		schoolName = models.DefaultSchoolInfo().Name
	}
	return &DAL{store: st, validator: validate, logger: logger, schoolName: schoolName}
}

// SetCacheObserver attaches hit/miss accounting. Call before serving traffic.
func (d *DAL) SetCacheObserver(o CacheObserver) {
	d.observer = o
}

func (d *DAL) observe(hit bool) {
	if d.observer != nil {
		d.observer.RecordCacheOperation(hit)
	}
}

// ========== subjects ==========

// GetSubjects returns all subjects ordered by their display order ascending,
// serving the cached snapshot when valid.
func (d *DAL) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	d.mu.Lock()
	if d.subjects.valid {
		items := append([]models.Subject(nil), d.subjects.items...)
		d.mu.Unlock()
		d.observe(true)
		return items, nil
	}
	d.mu.Unlock()
	d.observe(false)

	docs, err := d.store.Query(ctx, store.CollectionSubjects, store.Query{
		OrderBy: store.OrderBy{Field: "order"},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	var subjects []models.Subject
	if err := store.DecodeAll(docs, &subjects); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}

	d.mu.Lock()
	d.subjects = subjectSnapshot{valid: true, items: subjects}
	d.mu.Unlock()

	return append([]models.Subject(nil), subjects...), nil
}

// AddSubject creates a subject and invalidates the subjects snapshot.
func (d *DAL) AddSubject(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := d.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	doc, err := store.Encode(models.Subject{
		Name:        req.Name,
		Grade:       req.Grade,
		Color:       req.Color,
		Icon:        req.Icon,
		Order:       req.Order,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode subject")
	}

	id, err := d.store.Add(ctx, store.CollectionSubjects, doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	d.invalidateSubjects()

	return d.getSubject(ctx, id)
}

// UpdateSubject merges partial fields into an existing subject.
func (d *DAL) UpdateSubject(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	partial := req.partial()
	if len(partial) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := d.store.Update(ctx, store.CollectionSubjects, id, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	d.invalidateSubjects()

	return d.getSubject(ctx, id)
}

// DeleteSubject removes a subject unless resources still reference it. The
// check and the delete are two store operations: a resource created for this
// subject between them slips past the guard. The backing store has no
// multi-document transactions, so this window is accepted rather than
// papered over.
func (d *DAL) DeleteSubject(ctx context.Context, id string) error {
	resources, err := d.GetResourcesBySubject(ctx, id)
	if err != nil {
		return err
	}
	if len(resources) > 0 {
		return appErrors.Clone(appErrors.ErrSubjectInUse, "subject has associated resources and cannot be deleted")
	}

	if err := d.store.Delete(ctx, store.CollectionSubjects, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	d.invalidateSubjects()
	return nil
}

func (d *DAL) getSubject(ctx context.Context, id string) (*models.Subject, error) {
	doc, err := d.store.Get(ctx, store.CollectionSubjects, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	var subject models.Subject
	if err := store.Decode(doc, &subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode subject")
	}
	return &subject, nil
}

func (d *DAL) invalidateSubjects() {
	d.mu.Lock()
	d.subjects = subjectSnapshot{}
	d.mu.Unlock()
}

// ========== resources ==========

// GetResources performs a live query ordered by creation time descending.
// Filters compose conjunctively; tags use any-of semantics. Free-text search
// over title/description is not implemented: the store offers no full-text
// search, and a production deployment would delegate to an external index.
func (d *DAL) GetResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	q := store.Query{
		OrderBy: store.OrderBy{Field: "createdAt", Desc: true},
		Limit:   filter.Limit,
	}
	if filter.SubjectID != "" {
		q.Equals = map[string]string{"subjectId": filter.SubjectID}
	}
	if len(filter.Tags) > 0 {
		q.AnyOf = &store.AnyOf{Field: "tags", Values: filter.Tags}
	}
	if filter.Search != "" {
		d.logger.Debug("resource text search requested but unsupported", zap.String("search", filter.Search))
	}

	docs, err := d.store.Query(ctx, store.CollectionResources, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}

	var resources []models.Resource
	if err := store.DecodeAll(docs, &resources); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode resources")
	}
	if resources == nil {
		resources = []models.Resource{}
	}
	return resources, nil
}

// GetResourcesBySubject lists resources referencing a subject.
func (d *DAL) GetResourcesBySubject(ctx context.Context, subjectID string) ([]models.Resource, error) {
	return d.GetResources(ctx, models.ResourceFilter{SubjectID: subjectID})
}

// AddResource creates a resource with zeroed counters.
func (d *DAL) AddResource(ctx context.Context, req CreateResourceRequest) (*models.Resource, error) {
	if err := d.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	resource := models.Resource{
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Type:        req.Type,
		Tags:        req.Tags,
	}
	if resource.Type == "" {
		resource.Type = models.DefaultResourceType
	}
	if req.Size != "" {
		size, ok := filesize.Parse(req.Size)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised size, expected e.g. \"2.5 MB\"")
		}
		resource.Size = size
	}

	doc, err := store.Encode(resource)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode resource")
	}
	// counters always start at zero, even if a client sent them
	doc["downloads"] = 0
	doc["likes"] = 0

	id, err := d.store.Add(ctx, store.CollectionResources, doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return d.getResource(ctx, id)
}

// UpdateResource merges partial fields into an existing resource.
func (d *DAL) UpdateResource(ctx context.Context, id string, req UpdateResourceRequest) (*models.Resource, error) {
	partial := req.partial()
	if req.Size != nil {
		if *req.Size == "" {
			partial["size"] = 0
		} else {
			size, ok := filesize.Parse(*req.Size)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unrecognised size, expected e.g. \"2.5 MB\"")
			}
			partial["size"] = size
		}
	}
	if len(partial) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := d.store.Update(ctx, store.CollectionResources, id, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return d.getResource(ctx, id)
}

// DeleteResource removes a resource.
func (d *DAL) DeleteResource(ctx context.Context, id string) error {
	if err := d.store.Delete(ctx, store.CollectionResources, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	return nil
}

// IncrementDownloads bumps the download counter through the store's atomic
// increment, so concurrent downloads never lose counts, and stamps the last
// download time.
func (d *DAL) IncrementDownloads(ctx context.Context, id string) error {
	if err := d.store.IncrementField(ctx, store.CollectionResources, id, "downloads", 1); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count download")
	}

	if err := d.store.Update(ctx, store.CollectionResources, id, store.Document{
		"lastDownload": time.Now().UTC(),
	}); err != nil {
		// the counter is already right; the stamp is best effort
		d.logger.Warn("failed to stamp last download", zap.String("id", id), zap.Error(err))
	}
	return nil
}

// LikeResource bumps the like counter atomically.
func (d *DAL) LikeResource(ctx context.Context, id string) error {
	if err := d.store.IncrementField(ctx, store.CollectionResources, id, "likes", 1); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like resource")
	}
	return nil
}

// GetResource loads one resource by id.
func (d *DAL) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	return d.getResource(ctx, id)
}

func (d *DAL) getResource(ctx context.Context, id string) (*models.Resource, error) {
	doc, err := d.store.Get(ctx, store.CollectionResources, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	var resource models.Resource
	if err := store.Decode(doc, &resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode resource")
	}
	return &resource, nil
}

// ========== publications ==========

// GetPublications returns publications newest first. The snapshot always
// holds the full list; limit slices the returned copy so a limited read
// never poisons the cache.
func (d *DAL) GetPublications(ctx context.Context, limit int) ([]models.Publication, error) {
	d.mu.Lock()
	if d.publications.valid {
		items := append([]models.Publication(nil), d.publications.items...)
		d.mu.Unlock()
		d.observe(true)
		return applyLimit(items, limit), nil
	}
	d.mu.Unlock()
	d.observe(false)

	docs, err := d.store.Query(ctx, store.CollectionPublications, store.Query{
		OrderBy: store.OrderBy{Field: "createdAt", Desc: true},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list publications")
	}

	var publications []models.Publication
	if err := store.DecodeAll(docs, &publications); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode publications")
	}
	if publications == nil {
		publications = []models.Publication{}
	}

	d.mu.Lock()
	d.publications = publicationSnapshot{valid: true, items: publications}
	d.mu.Unlock()

	return applyLimit(append([]models.Publication(nil), publications...), limit), nil
}

// AddPublication creates a publication with zero likes, no comments, and the
// institution as default author.
func (d *DAL) AddPublication(ctx context.Context, req CreatePublicationRequest) (*models.Publication, error) {
	if err := d.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid publication payload")
	}

	author := req.Author
	if author == "" {
		author = d.schoolName
	}

	doc, err := store.Encode(models.Publication{
		Title:    req.Title,
		Content:  req.Content,
		Author:   author,
		ImageURL: req.ImageURL,
		Comments: []models.Comment{},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode publication")
	}
	doc["likes"] = 0

	id, err := d.store.Add(ctx, store.CollectionPublications, doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create publication")
	}
	d.invalidatePublications()

	return d.getPublication(ctx, id)
}

// UpdatePublication merges partial fields into an existing publication.
func (d *DAL) UpdatePublication(ctx context.Context, id string, req UpdatePublicationRequest) (*models.Publication, error) {
	partial := req.partial()
	if len(partial) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := d.store.Update(ctx, store.CollectionPublications, id, partial); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "publication not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update publication")
	}
	d.invalidatePublications()

	return d.getPublication(ctx, id)
}

// DeletePublication removes a publication.
func (d *DAL) DeletePublication(ctx context.Context, id string) error {
	if err := d.store.Delete(ctx, store.CollectionPublications, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete publication")
	}
	d.invalidatePublications()
	return nil
}

// LikePublication bumps the like counter atomically.
func (d *DAL) LikePublication(ctx context.Context, id string) error {
	if err := d.store.IncrementField(ctx, store.CollectionPublications, id, "likes", 1); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "publication not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like publication")
	}
	d.invalidatePublications()
	return nil
}

// AddComment appends a comment to a publication. The append is a
// read-modify-write: two simultaneous comments can drop one. Comments are
// low-stakes enough that this mirrors the upstream behaviour instead of
// introducing a comments collection.
func (d *DAL) AddComment(ctx context.Context, id string, req AddCommentRequest) (*models.Publication, error) {
	if err := d.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	publication, err := d.getPublication(ctx, id)
	if err != nil {
		return nil, err
	}

	comments := append(publication.Comments, models.Comment{
		Author:    req.Author,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	})

	if err := d.store.Update(ctx, store.CollectionPublications, id, store.Document{
		"comments": comments,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}
	d.invalidatePublications()

	return d.getPublication(ctx, id)
}

func (d *DAL) getPublication(ctx context.Context, id string) (*models.Publication, error) {
	doc, err := d.store.Get(ctx, store.CollectionPublications, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "publication not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load publication")
	}
	var publication models.Publication
	if err := store.Decode(doc, &publication); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode publication")
	}
	return &publication, nil
}

func (d *DAL) invalidatePublications() {
	d.mu.Lock()
	d.publications = publicationSnapshot{}
	d.mu.Unlock()
}

// ========== school info ==========

// GetSchoolInfo returns the school singleton, falling back to the built-in
// default document when none has been stored yet.
func (d *DAL) GetSchoolInfo(ctx context.Context) (models.SchoolInfo, error) {
	d.mu.Lock()
	if d.school.valid {
		info := d.school.info
		d.mu.Unlock()
		d.observe(true)
		return info, nil
	}
	d.mu.Unlock()
	d.observe(false)

	doc, err := d.store.Get(ctx, store.CollectionConfig, store.DocSchoolInfo)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			info := models.DefaultSchoolInfo()
			d.mu.Lock()
			d.school = schoolSnapshot{valid: true, info: info}
			d.mu.Unlock()
			return info, nil
		}
		return models.SchoolInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school info")
	}

	var info models.SchoolInfo
	if err := store.Decode(doc, &info); err != nil {
		return models.SchoolInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode school info")
	}

	d.mu.Lock()
	d.school = schoolSnapshot{valid: true, info: info}
	d.mu.Unlock()
	return info, nil
}

// UpdateSchoolInfo merges partial fields into the school singleton.
func (d *DAL) UpdateSchoolInfo(ctx context.Context, req UpdateSchoolInfoRequest) (models.SchoolInfo, error) {
	partial := req.partial()
	if len(partial) == 0 {
		return models.SchoolInfo{}, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := d.store.Set(ctx, store.CollectionConfig, store.DocSchoolInfo, partial, true); err != nil {
		return models.SchoolInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school info")
	}

	d.mu.Lock()
	d.school = schoolSnapshot{}
	d.mu.Unlock()

	return d.GetSchoolInfo(ctx)
}

// ========== theme config ==========

// GetThemeConfig returns the theme singleton, defaulting to the built-in
// palettes.
func (d *DAL) GetThemeConfig(ctx context.Context) (models.ThemeConfig, error) {
	d.mu.Lock()
	if d.theme.valid {
		cfg := d.theme.cfg
		d.mu.Unlock()
		d.observe(true)
		return cfg, nil
	}
	d.mu.Unlock()
	d.observe(false)

	doc, err := d.store.Get(ctx, store.CollectionConfig, store.DocThemes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cfg := models.DefaultThemeConfig()
			d.mu.Lock()
			d.theme = themeSnapshot{valid: true, cfg: cfg}
			d.mu.Unlock()
			return cfg, nil
		}
		return models.ThemeConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load theme config")
	}

	var cfg models.ThemeConfig
	if err := store.Decode(doc, &cfg); err != nil {
		return models.ThemeConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode theme config")
	}

	d.mu.Lock()
	d.theme = themeSnapshot{valid: true, cfg: cfg}
	d.mu.Unlock()
	return cfg, nil
}

// UpdateThemeConfig replaces the theme singleton. CurrentTheme must name one
// of the configured themes.
func (d *DAL) UpdateThemeConfig(ctx context.Context, cfg models.ThemeConfig) (models.ThemeConfig, error) {
	if cfg.CurrentTheme == "" || len(cfg.Themes) == 0 {
		return models.ThemeConfig{}, appErrors.Clone(appErrors.ErrValidation, "theme config requires currentTheme and themes")
	}
	if _, ok := cfg.Themes[cfg.CurrentTheme]; !ok {
		return models.ThemeConfig{}, appErrors.Clone(appErrors.ErrValidation, "currentTheme does not name a configured theme")
	}

	doc, err := store.Encode(cfg)
	if err != nil {
		return models.ThemeConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode theme config")
	}
	if err := d.store.Set(ctx, store.CollectionConfig, store.DocThemes, doc, false); err != nil {
		return models.ThemeConfig{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update theme config")
	}

	d.mu.Lock()
	d.theme = themeSnapshot{}
	d.mu.Unlock()

	return d.GetThemeConfig(ctx)
}

// ========== stats ==========

// GetStats aggregates counts plus total downloads. It reuses collection
// snapshots where valid but is itself never cached.
func (d *DAL) GetStats(ctx context.Context) (models.Stats, error) {
	subjects, err := d.GetSubjects(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	resources, err := d.GetResources(ctx, models.ResourceFilter{})
	if err != nil {
		return models.Stats{}, err
	}
	publications, err := d.GetPublications(ctx, 0)
	if err != nil {
		return models.Stats{}, err
	}

	var downloads int64
	for _, r := range resources {
		downloads += r.Downloads
	}

	return models.Stats{
		TotalSubjects:     len(subjects),
		TotalResources:    len(resources),
		TotalPublications: len(publications),
		TotalDownloads:    downloads,
	}, nil
}

// ========== change subscription ==========

var watchedCollections = []string{
	store.CollectionSubjects,
	store.CollectionResources,
	store.CollectionPublications,
}

// Subscribe registers fn for change notifications on the three core
// collections. The relevant snapshot is invalidated before fn runs, so a
// re-fetch triggered by the callback sees fresh data. The returned function
// tears down all underlying subscriptions; independent Subscribe calls get
// independent teardowns.
func (d *DAL) Subscribe(ctx context.Context, fn func(collection string)) (func(), error) {
	unsubs := make([]func(), 0, len(watchedCollections))

	for _, collection := range watchedCollections {
		collection := collection
		unsub, err := d.store.Subscribe(ctx, collection, func(ev store.Event) {
			d.invalidateFor(ev.Collection)
			fn(ev.Collection)
		})
		if err != nil {
			for _, u := range unsubs {
				u()
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe to "+collection)
		}
		unsubs = append(unsubs, unsub)
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}, nil
}

// Invalidate drops every snapshot. Bulk writers that bypass the DAL's own
// mutation paths (the backup import) call this once at the end.
func (d *DAL) Invalidate() {
	d.mu.Lock()
	d.subjects = subjectSnapshot{}
	d.publications = publicationSnapshot{}
	d.school = schoolSnapshot{}
	d.theme = themeSnapshot{}
	d.mu.Unlock()
}

func (d *DAL) invalidateFor(collection string) {
	switch collection {
	case store.CollectionSubjects:
		d.invalidateSubjects()
	case store.CollectionPublications:
		d.invalidatePublications()
	}
	// resources are never cached; nothing to invalidate
}

func applyLimit(items []models.Publication, limit int) []models.Publication {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
