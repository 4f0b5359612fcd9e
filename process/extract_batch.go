package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"px01/models"
	"px01/pkg/passport"
)

// Global DB handle for helper funcs; nil in dry-run mode.
var db *gorm.DB

// global flags (parsed in main)
var verbose bool

// MIME mapping to avoid sniffing files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// preload cache of already-processed file names so re-runs are idempotent.
type preloadState struct {
	byFile map[string]*models.Extraction
	mu     sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{byFile: make(map[string]*models.Extraction, 1024)}
}

func (ps *preloadState) get(name string) (*models.Extraction, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	e, ok := ps.byFile[name]
	return e, ok
}

func (ps *preloadState) put(e *models.Extraction) {
	ps.mu.Lock()
	ps.byFile[e.FileName] = e
	ps.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: scans a directory of passport photos, runs the extraction pipeline on
// each and stores results as Extraction rows; optional watch mode picks up new
// files as they land.
func main() {
	dirFlag := flag.String("dir", "public/passports", "directory to scan for passport images")
	subject := flag.String("subject", "batch", "subject recorded on persisted extractions")
	dryRun := flag.Bool("dry-run", false, "Skip all DB writes; run the pipeline and log results only")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	inspect := flag.Bool("inspect", false, "Print summary statistics for persisted extractions and exit")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	if *inspect {
		if err := RunInspectExtractions(os.Getenv("DB_DSN")); err != nil {
			log.Fatalf("inspect failed: %v", err)
		}
		return
	}

	ps := newPreloadState()
	if !*dryRun {
		db = mustInitDBFromEnv()
		preloadAll(ps, *subject)
		log.Printf("Preloaded: extractions=%d", len(ps.byFile))
	} else {
		log.Printf("Dry-run: results will not be persisted")
	}

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, *subject, ps, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, *subject, ps, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadAll fetches this subject's existing rows to minimize per-file
// queries.
func preloadAll(ps *preloadState, subject string) {
	var rows []models.Extraction
	if err := db.Where("subject = ?", subject).Find(&rows).Error; err == nil {
		for i := range rows {
			r := rows[i]
			ps.byFile[r.FileName] = &r
		}
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := extMime[ext]
	return ok
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

func watchDirectory(dir, subject string, ps *preloadState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create || ev.Op&fsnotify.Write == fsnotify.Write {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(dir, subject, ps, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

// worker pool orchestrator. Each worker owns its Tesseract client for the
// lifetime of the pool since the client is not safe for concurrent use.
func runWorkerPool(dir, subject string, ps *preloadState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng, err := passport.NewTesseractEngine()
			if err != nil {
				log.Printf("ERROR worker engine init: %v", err)
				for range fileCh {
					// drain so other workers and the feeder are not blocked
				}
				return
			}
			defer eng.Close()
			pipe := passport.NewPipeline(eng)
			for name := range fileCh {
				processSingleFile(pipe, dir, name, subject, ps)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile runs the pipeline on one image and persists the result.
// Idempotent per subject and file name: preload cache, a re-check before
// insert, and the table's unique index for races across runs.
func processSingleFile(pipe *passport.Pipeline, dir, name, subject string, ps *preloadState) {
	if _, ok := ps.get(name); ok {
		logV("SKIP already extracted %s", name)
		return
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Printf("ERROR read %s: %v", name, err)
		return
	}

	rec, err := pipe.Extract(context.Background(), passport.RawImage{
		Data: data,
		MIME: mimeFromExt(name),
	})
	if err != nil {
		log.Printf("FAIL %s: %v", name, err)
		return
	}
	log.Printf("EXTRACTED file=%s passport=%s mrzValid=%t confidence=%d", name, rec.PassportNumber, rec.MRZValid, rec.Confidence)

	if db == nil {
		return
	}
	// Re-check in case another worker persisted this file concurrently
	if _, ok := ps.get(name); ok {
		return
	}
	row := models.Extraction{
		Subject:        subject,
		FileName:       name,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		PassportNumber: rec.PassportNumber,
		Nationality:    rec.Nationality,
		DateOfBirth:    rec.DateOfBirth,
		Sex:            rec.Sex,
		ExpiryDate:     rec.ExpiryDate,
		MRZValid:       rec.MRZValid,
		Confidence:     rec.Confidence,
	}
	if err := db.Create(&row).Error; err != nil {
		if isUniqueConstraintError(err) { // race: another run recorded it
			var existing models.Extraction
			if err2 := db.Where("subject = ? AND file_name = ?", subject, name).First(&existing).Error; err2 == nil {
				ps.put(&existing)
			}
			return
		}
		log.Printf("ERROR persist %s: %v", name, err)
		return
	}
	ps.put(&row)
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
