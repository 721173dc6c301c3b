package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/neurobids/bidsmapper/internal/config"
	"github.com/neurobids/bidsmapper/internal/converter"
	"github.com/neurobids/bidsmapper/internal/ledger"
	"github.com/neurobids/bidsmapper/internal/logging"
	"github.com/neurobids/bidsmapper/internal/mapfile"
	"github.com/neurobids/bidsmapper/internal/mapping"
	"github.com/neurobids/bidsmapper/internal/naming"
	"github.com/neurobids/bidsmapper/internal/schema"
	"github.com/neurobids/bidsmapper/internal/source"
)

// ledgerName is the scan ledger file inside the output directory.
const ledgerName = "scans.tsv"

// session bundles the state owned by one pipeline run.
type session struct {
	cfg     *config.Config
	log     *logging.Logger
	sources []source.Source
	tiers   mapping.Tiers
	ledger  *ledger.Ledger
}

// Run is the top-level session entry point. It loads the map document and
// scan ledger, processes every discovered item sequentially, and persists
// both at session end. Per-item failures log and continue; only a broken
// map document or ledger aborts the session.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (Stats, error) {
	var stats Stats

	cache := &source.Cache{}
	s := &session{
		cfg: cfg,
		log: log,
		sources: []source.Source{
			source.NewDICOM(cache),
			source.NewPAR(cache),
		},
	}

	doc, err := loadDocument(cfg.MapFile)
	if err != nil {
		return stats, err
	}
	// Tier rotation: the previous session's result becomes the
	// authoritative "old" map; this session builds a fresh one.
	s.tiers = mapping.Tiers{
		New:      mapping.NewMap(source.FormatDICOM),
		Old:      doc.Current,
		Template: doc.Template,
	}

	s.ledger, err = ledger.Load(filepath.Join(cfg.OutputDir, ledgerName))
	if err != nil {
		return stats, fmt.Errorf("scan ledger: %w", err)
	}

	items, err := Discover(cfg.SourceDir, s.sources)
	if err != nil {
		return stats, fmt.Errorf("source discovery: %w", err)
	}
	stats.Total = len(items)

	log.Info("Session %s", uuid.NewString())
	log.Info("Found %d source series", stats.Total)
	log.Info("Map: %s", cfg.MapFile)
	log.Info("Converter: %s %s", cfg.ConverterBin, strings.Join(cfg.ConverterArgs, " "))
	fmt.Println()

	for i, item := range items {
		stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		s.processItem(ctx, item, &stats)
	}

	if !cfg.DryRun {
		doc = &mapfile.Document{
			Current:  s.tiers.New,
			Previous: s.tiers.Old,
			Template: doc.Template,
		}
		if err := mapfile.Save(cfg.MapFile, doc); err != nil {
			return stats, fmt.Errorf("save map document: %w", err)
		}
		if err := s.ledger.Save(); err != nil {
			return stats, fmt.Errorf("save scan ledger: %w", err)
		}
	}

	logSummary(log, &stats, cfg.DryRun)
	return stats, nil
}

// loadDocument reads the map document, treating a missing file as an empty
// first-session document.
func loadDocument(path string) (*mapfile.Document, error) {
	if path == "" {
		return &mapfile.Document{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &mapfile.Document{}, nil
	}
	return mapfile.Load(path)
}

// processItem handles one source series: classify → compose → resolve index
// → convert → reconcile postfixes → record.
func (s *session) processItem(ctx context.Context, item Item, stats *Stats) {
	log := s.log
	log.Info("[%d/%d] %s", stats.Current, stats.Total, item.Dir)

	src, _, ok := source.Detect(s.sources, item.File)
	if !ok {
		log.Warn("Unsupported source format, skipping")
		stats.Skipped++
		return
	}
	attrs := mapping.AttrFunc(func(name string) string {
		return src.Attribute(name, item.File)
	})

	if s.cfg.SkipDerived && isDerived(attrs) {
		log.Info("Skip (derived series): %s", attrs("SeriesDescription"))
		stats.Skipped++
		return
	}

	// --- Classify ---
	res, err := mapping.Match(attrs, s.tiers)
	if err != nil {
		log.Error("Classification failed: %v", err)
		stats.Failed++
		return
	}
	if res.Modality == schema.Extra && !res.InOld {
		log.Match("Unclassified series: %s", attrs("SeriesDescription"))
		stats.Unclassified++
	} else {
		log.Match("%s run: %s", res.Modality, attrs("SeriesDescription"))
	}
	log.Debug("Filled template:\n%s", spew.Sdump(res.Run))

	// --- Register into the session map ---
	reg := mapping.Registrable(res, attrs, item.File)
	if exists, err := mapping.Exists(s.tiers.New, res.Modality, reg); err == nil && !exists {
		if err := mapping.Insert(s.tiers.New, res.Modality, reg); err != nil {
			log.Error("Map insert failed: %v", err)
		}
	}

	// --- Compose ---
	subject := s.cfg.Subject
	if subject == "" {
		subject = naming.CleanLabel(attrs(s.cfg.SubjectAttr))
	}
	runValue := res.Run.Labels[schema.KeyRun]
	if res.AutoIndex {
		runValue = "1"
	}
	name, err := naming.Compose(res.Modality, subject, s.cfg.Session, res.Run.Labels, runValue)
	if err != nil {
		log.Error("Name composition failed: %v", err)
		stats.Failed++
		return
	}

	// --- Resolve run index against the destination collection ---
	destDir := s.destDir(subject, res.Modality)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %v", err)
		stats.Failed++
		return
	}
	resolver := naming.NewIndexResolver(&naming.DirCollection{Dir: destDir, Ledger: s.ledger}, log)
	name, err = resolver.Resolve(name, res.AutoIndex)
	if err != nil {
		log.Error("Run-index resolution failed: %v", err)
		stats.Failed++
		return
	}
	log.Info("  -> %s", name)

	if s.cfg.DryRun {
		log.Success("[DRY] Would convert")
		stats.Converted++
		return
	}

	// --- Convert ---
	result := converter.Convert(ctx, s.cfg, item.Dir, destDir, name)
	if result.Err != nil {
		log.Error("Conversion failed: %v", result.Err)
		logStderr(log, result.Stderr)
		stats.Failed++
		return
	}
	if len(result.Artifacts) == 0 {
		log.Warn("Converter produced no artifacts")
		stats.Skipped++
		return
	}

	// --- Reconcile converter postfixes and record ---
	if err := s.reconcileArtifacts(res, resolver, destDir, name, result.Artifacts, attrs); err != nil {
		log.Error("Postfix reconciliation failed: %v", err)
		stats.Failed++
		return
	}

	log.Success("Converted (%d artifacts)", len(result.Artifacts))
	stats.Converted++
}

// reconcileArtifacts maps converter postfix tokens back into the naming
// scheme, renames the artifact files accordingly, re-resolves each patched
// name for collisions, and appends the imaging artifacts to the scan
// ledger.
func (s *session) reconcileArtifacts(
	res mapping.MatchResult,
	resolver *naming.IndexResolver,
	destDir, base string,
	artifacts []converter.Artifact,
	attrs mapping.AttrFunc,
) error {
	tokens := converter.Tokens(artifacts)
	names, err := naming.Reconcile(res.Modality, base, tokens, s.log)
	if err != nil {
		return err
	}

	patched := make(map[string]string, len(tokens)) // token → final name
	for i, token := range tokens {
		final := names[i]
		if final != base {
			// Patching can reintroduce collisions; resolve again.
			final, err = resolver.Resolve(final, res.AutoIndex)
			if err != nil {
				return err
			}
		}
		patched[token] = final
	}

	acqTime := acquisitionTime(attrs)
	for _, a := range artifacts {
		final := patched[a.Token]
		stem := naming.Stem(a.Path)
		ext := filepath.Base(a.Path)[len(stem):]

		path := a.Path
		if final+ext != filepath.Base(a.Path) {
			path = filepath.Join(destDir, final+ext)
			if err := os.Rename(a.Path, path); err != nil {
				return err
			}
		}
		if strings.HasPrefix(ext, ".nii") {
			rel, err := filepath.Rel(s.cfg.OutputDir, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			s.ledger.Append(rel, acqTime)
		}
	}
	return nil
}

// destDir is the destination collection for one subject and modality:
// <output>/sub-<subject>[/ses-<session>]/<modality>.
func (s *session) destDir(subject string, mod schema.Modality) string {
	parts := []string{s.cfg.OutputDir, "sub-" + subject}
	if s.cfg.Session != "" {
		parts = append(parts, "ses-"+s.cfg.Session)
	}
	parts = append(parts, string(mod))
	return filepath.Join(parts...)
}

// isDerived reports whether the image classification marks the series as a
// derived/secondary reconstruction.
func isDerived(attrs mapping.AttrFunc) bool {
	return strings.Contains(strings.ToUpper(attrs("ImageType")), "DERIVED")
}

// acquisitionTime reads the acquisition timestamp for the ledger, falling
// back to the split date/time attributes.
func acquisitionTime(attrs mapping.AttrFunc) string {
	if t := attrs("AcquisitionDateTime"); t != "" {
		return t
	}
	date, clock := attrs("AcquisitionDate"), attrs("AcquisitionTime")
	if date == "" {
		return clock
	}
	if clock == "" {
		return date
	}
	return date + "T" + clock
}

func logStderr(log *logging.Logger, stderr string) {
	if stderr == "" {
		return
	}
	log.Error("Last converter output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

func logSummary(log *logging.Logger, stats *Stats, dryRun bool) {
	fmt.Println()
	log.Info("==============================")
	log.Info("Done: %d converted, %d skipped, %d failed", stats.Converted, stats.Skipped, stats.Failed)
	if stats.Unclassified > 0 {
		log.Warn("  %d series routed to %s; review the map document", stats.Unclassified, schema.Extra)
	}
	if dryRun {
		log.Info("  (dry run: map document and ledger not written)")
	}
}
