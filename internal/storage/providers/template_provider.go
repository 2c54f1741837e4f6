package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"doctemplates/internal/domains"
	"doctemplates/internal/payload"
	"doctemplates/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// IncomingDir holds archives being unpacked inside permanent storage before
// they are moved to their final place. SetupCache skips dot entries, and
// leftovers from an interrupted commit are safe to delete.
const IncomingDir = ".incoming"

const (
	stagedArchive = "archive.zip"
	stagedTree    = "tree"
)

// TemplateProvider keeps templates on permanent storage and in the cache in
// step. Untrusted archives are unpacked and validated on staging storage
// before anything is written to permanent storage.
type TemplateProvider struct {
	fileStorage  storage.Storage
	tmpStorage   storage.Storage
	tmpValidator Validator
	cache        Cache
	factory      Factory

	setupWorkers int
	now          func() time.Time
}

type Option func(*TemplateProvider)

// WithSetupWorkers bounds how many templates SetupCache loads in parallel.
func WithSetupWorkers(n int) Option {
	return func(p *TemplateProvider) {
		if n > 0 {
			p.setupWorkers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *TemplateProvider) {
		p.now = now
	}
}

func NewTemplateProvider(
	fileStorage storage.Storage,
	tmpStorage storage.Storage,
	tmpValidator Validator,
	cache Cache,
	factory Factory,
	opts ...Option,
) *TemplateProvider {
	p := &TemplateProvider{
		fileStorage:  fileStorage,
		tmpStorage:   tmpStorage,
		tmpValidator: tmpValidator,
		cache:        cache,
		factory:      factory,
		setupWorkers: 1,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetupCache loads every template directory into the cache. Templates that
// fail to load are skipped and their errors returned joined.
func (p *TemplateProvider) SetupCache(ctx context.Context) error {
	entries, err := p.fileStorage.ListDir(".")
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(p.setupWorkers)
	for _, entry := range entries {
		if strings.HasPrefix(path.Base(entry), ".") || !p.fileStorage.IsDir(entry) {
			continue
		}
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		entry := entry
		g.Go(func() error {
			if _, err := p.setupTemplate(ctx, entry); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", entry, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (p *TemplateProvider) setupTemplate(ctx context.Context, dir string) (*domains.Template, error) {
	template, err := p.CreateFromPath(ctx, dir)
	if err != nil {
		return nil, err
	}
	entries, err := p.fileStorage.ListDir(VersionsPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", dir, err)
	}
	for _, entry := range entries {
		if _, err := p.CreateVersionFromPath(ctx, template, entry, VersionLoadOptions{}); err != nil {
			return nil, err
		}
	}
	return template, nil
}

func (p *TemplateProvider) ListAll() []*domains.Template {
	return p.cache.List()
}

func (p *TemplateProvider) Get(id uuid.UUID) (*domains.Template, bool) {
	return p.cache.Get(id)
}

// CreateFromPath builds the template stored at dir, rewrites its meta.yaml
// in canonical form and registers it in the cache.
func (p *TemplateProvider) CreateFromPath(ctx context.Context, dir string) (*domains.Template, error) {
	template, err := p.factory.CreateTemplate(dir)
	if err != nil {
		return nil, err
	}
	if name := path.Base(dir); name != template.ID().String() {
		return nil, structureErr(dir, fmt.Errorf("%w: %s != %s", ErrTemplateIDMismatch, name, template.ID()))
	}
	if err := p.saveTemplateMeta(template); err != nil {
		return nil, err
	}
	p.cache.Add(template)
	return template, nil
}

func (p *TemplateProvider) Create(ctx context.Context, create domains.TemplateCreate) (*domains.Template, error) {
	meta := domains.NewTemplateMetaData(create)
	dir, err := p.store(meta)
	if err != nil {
		return nil, err
	}
	return p.CreateFromPath(ctx, dir)
}

// CreateFromZipBytes imports a template archive. The archive is validated in
// a fresh staging directory that is removed on every return path; permanent
// storage is written only after validation passed.
func (p *TemplateProvider) CreateFromZipBytes(ctx context.Context, data []byte) (*domains.Template, error) {
	stageDir := uuid.NewString()
	defer p.releaseStaging(stageDir)

	root, err := p.tmpStorage.SaveDirFromArchiveBytes(data, stageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stage archive: %w", err)
	}
	return p.importStaged(ctx, data, root)
}

// CreateFromZipFile imports an archive already saved in staging storage. The
// archive is first moved into a private staging directory, so the bytes that
// are validated and the bytes that are committed come from the same file.
// The archive is removed afterwards whatever the outcome.
func (p *TemplateProvider) CreateFromZipFile(ctx context.Context, archivePath string) (*domains.Template, error) {
	stageDir := uuid.NewString()
	defer p.releaseStaging(stageDir)
	defer p.releaseStaging(archivePath)

	claimed, err := p.tmpStorage.MoveFile(archivePath, path.Join(stageDir, stagedArchive))
	if err != nil {
		return nil, err
	}
	data, err := p.tmpStorage.LoadFile(claimed)
	if err != nil {
		return nil, err
	}
	root, err := p.tmpStorage.ExtractArchive(claimed, path.Join(stageDir, stagedTree))
	if err != nil {
		return nil, fmt.Errorf("failed to stage archive: %w", err)
	}
	return p.importStaged(ctx, data, root)
}

// importStaged validates the tree extracted at root and commits data, the
// archive it was extracted from, into permanent storage.
func (p *TemplateProvider) importStaged(ctx context.Context, data []byte, root string) (*domains.Template, error) {
	meta, err := p.tmpValidator.ValidateTemplateDir(root)
	if err != nil {
		return nil, err
	}
	if err := p.checkTemplateDuplication(meta.ID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dest := templatePath(meta.ID)
	if err := p.commitArchive(data, dest); err != nil {
		return nil, err
	}
	// The archive may omit the id; pin the one the directory is named after.
	template, err := p.pinTemplateMeta(ctx, dest, meta)
	if err != nil {
		p.rollback(dest)
		return nil, err
	}
	return template, nil
}

func (p *TemplateProvider) pinTemplateMeta(ctx context.Context, dir string, meta domains.TemplateMetaData) (*domains.Template, error) {
	data, err := meta.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := p.fileStorage.SaveFile(MetaPath(dir), data); err != nil {
		return nil, err
	}
	return p.CreateFromPath(ctx, dir)
}

func (p *TemplateProvider) Update(ctx context.Context, template *domains.Template, update domains.TemplateUpdate) (*domains.Template, error) {
	if update.Title != nil {
		template.SetTitle(*update.Title)
	}
	if update.Description != nil {
		template.SetDescription(*update.Description)
	}
	if update.Labels != nil {
		template.SetLabels(*update.Labels)
	}
	template.Touch(p.now())

	if err := p.saveTemplateMeta(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (p *TemplateProvider) LoadTemplateZip(ctx context.Context, template *domains.Template) ([]byte, error) {
	return p.fileStorage.LoadDirAsArchiveBytes(templatePath(template.ID()), false)
}

func (p *TemplateProvider) ValidateGenerationPayload(
	ctx context.Context,
	template *domains.Template,
	version *domains.TemplateVersion,
	incoming map[string]any,
) (payload.ValidationResult, error) {
	data, err := p.LoadTemplateJSON(ctx, template, version)
	if err != nil {
		return payload.ValidationResult{}, err
	}
	reference, err := payload.Decode(data)
	if err != nil {
		return payload.ValidationResult{}, fmt.Errorf("example payload of %s %s: %w", template.ID(), version.TagString(), err)
	}
	return payload.Validate(reference, incoming), nil
}

func (p *TemplateProvider) checkTemplateDuplication(id uuid.UUID) error {
	if _, ok := p.cache.Get(id); ok {
		return fmt.Errorf("template %s: %w", id, ErrDuplication)
	}
	if p.fileStorage.Exists(templatePath(id)) {
		return fmt.Errorf("template directory %s: %w", id, ErrDuplication)
	}
	return nil
}

func (p *TemplateProvider) store(meta domains.TemplateMetaData) (string, error) {
	dir := templatePath(meta.ID)
	if p.fileStorage.Exists(dir) {
		return "", fmt.Errorf("template directory %s: %w", dir, ErrDuplication)
	}
	if _, err := p.fileStorage.Mkdir(VersionsPath(dir)); err != nil {
		return "", err
	}
	data, err := meta.Encode()
	if err != nil {
		return "", err
	}
	if _, err := p.fileStorage.SaveFile(MetaPath(dir), data); err != nil {
		return "", err
	}
	return dir, nil
}

func (p *TemplateProvider) saveTemplateMeta(template *domains.Template) error {
	data, err := template.MetaBytes()
	if err != nil {
		return err
	}
	_, err = p.fileStorage.SaveFile(MetaPath(templatePath(template.ID())), data)
	return err
}

// commitArchive unpacks data into permanent storage and moves the unpacked
// root to dest.
func (p *TemplateProvider) commitArchive(data []byte, dest string) error {
	incoming := path.Join(IncomingDir, uuid.NewString())
	defer p.release(p.fileStorage, incoming)

	root, err := p.fileStorage.SaveDirFromArchiveBytes(data, incoming)
	if err != nil {
		return fmt.Errorf("failed to unpack archive: %w", err)
	}
	if _, err := p.fileStorage.MoveDir(root, dest); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}
	return nil
}

func (p *TemplateProvider) releaseStaging(stagePath string) {
	p.release(p.tmpStorage, stagePath)
}

func (p *TemplateProvider) rollback(dest string) {
	p.release(p.fileStorage, dest)
}

func (p *TemplateProvider) release(s storage.Storage, target string) {
	if err := s.Delete(target); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("failed to remove directory", "path", target, "err", err)
	}
}

func templatePath(id uuid.UUID) string {
	return id.String()
}
