package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"

	"github.com/socialhub/mediaup/internal/config"
	"github.com/socialhub/mediaup/internal/filex"
	"github.com/socialhub/mediaup/internal/logging"
	"github.com/socialhub/mediaup/internal/media/cleanup"
	"github.com/socialhub/mediaup/internal/media/manager"
	"github.com/socialhub/mediaup/internal/media/models"
	"github.com/socialhub/mediaup/internal/media/normalize"
	"github.com/socialhub/mediaup/internal/media/persist"
	"github.com/socialhub/mediaup/internal/media/transfer"
)

func main() {
	app := &cli.App{
		Name:  "mediaup",
		Usage: "media upload pipeline: validate, preview, upload, persist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload one or more media files",
				ArgsUsage: "FILE [FILE...]",
				Action:    uploadFiles,
			},
			{
				Name:   "list",
				Usage:  "List persisted uploads",
				Action: listUploads,
			},
			{
				Name:  "remove",
				Usage: "Remove one upload by id",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Entry id",
						Required: true,
					},
				},
				Action: removeUpload,
			},
			{
				Name:   "clear",
				Usage:  "Remove all uploads",
				Action: clearUploads,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type env struct {
	cfg *config.Config
	db  *sql.DB
	mgr *manager.Manager
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	store := persist.NewSQLiteStore(db)
	if err := store.Init(c.Context); err != nil {
		db.Close()
		return nil, err
	}

	s3store, err := transfer.NewS3Store(c.Context, transfer.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	previewDir, err := filex.EnsureSubDir(cfg.Previews.Dir, "mediaup-previews")
	if err != nil {
		db.Close()
		return nil, err
	}

	norm := normalize.New(normalize.Options{
		Thumbnailer: &normalize.FFmpegThumbnailer{
			FFmpeg:  cfg.Previews.FFmpegPath,
			FFprobe: cfg.Previews.FFprobePath,
		},
		PreviewDir: previewDir,
		NativeHEIC: cfg.Previews.NativeHEIC,
		Logger:     logger,
	})

	mgr := manager.New(manager.Config{
		MaxFiles:      cfg.Limits.MaxFiles,
		MaxImageBytes: cfg.Limits.MaxImageBytes,
		MaxVideoBytes: cfg.Limits.MaxVideoBytes,
	}, manager.Deps{
		Selector:   transfer.NewSelector(s3store, cfg.Limits.DirectLimit, cfg.Limits.PartSize),
		Normalizer: norm,
		Store:      store,
		Cleaner:    cleanup.NewCoordinator(s3store, logger),
		Logger:     logger,
	})

	if err := mgr.Hydrate(c.Context); err != nil {
		db.Close()
		return nil, fmt.Errorf("hydrate: %w", err)
	}

	return &env{cfg: cfg, db: db, mgr: mgr}, nil
}

func (e *env) close() {
	e.mgr.Close()
	e.db.Close()
}

func uploadFiles(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no files given")
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	var refs []models.FileRef
	for _, path := range c.Args().Slice() {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		// MIME is sniffed from content at intake.
		refs = append(refs, models.NewPathFileRef(filepath.Base(path), "", fi.Size(), path))
	}

	report, err := e.mgr.AddFiles(c.Context, refs)
	if err != nil {
		return err
	}
	for _, rej := range report.Rejected {
		fmt.Printf("rejected: %s (%v)\n", rej.Name, rej.Reason)
	}
	if len(report.Added) == 0 {
		return fmt.Errorf("nothing to upload")
	}

	bars := make(map[string]*pb.ProgressBar, len(report.Added))
	pool := make([]*pb.ProgressBar, 0, len(report.Added))
	for _, entry := range report.Added {
		bar := pb.New(100)
		bar.SetTemplate(`{{string . "name"}} {{bar . }} {{percent . }}`)
		bar.Set("name", fmt.Sprintf("%-30s %10s", entry.File.Name, humanize.IBytes(uint64(entry.File.Size))))
		bars[entry.ID] = bar
		pool = append(pool, bar)
	}
	barPool, err := pb.StartPool(pool...)
	if err != nil {
		return err
	}

	e.mgr.SetOnChange(func(snapshot []*models.Entry) {
		for _, entry := range snapshot {
			if bar, ok := bars[entry.ID]; ok {
				bar.SetCurrent(int64(entry.Progress))
			}
		}
	})

	e.mgr.Wait()
	barPool.Stop()

	for _, entry := range e.mgr.Entries() {
		switch entry.Status {
		case models.StatusSuccess:
			fmt.Printf("%s  %s  %s\n", entry.ID, entry.File.Name, entry.PreviewURL)
		case models.StatusError:
			fmt.Printf("%s  %s  FAILED: %s\n", entry.ID, entry.File.Name, entry.ErrorMessage)
		}
	}
	return nil
}

func listUploads(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	entries := e.mgr.Entries()
	if len(entries) == 0 {
		fmt.Println("no uploads")
		return nil
	}
	for _, entry := range entries {
		fmt.Printf("%s  %-7s %-30s %10s  %s\n",
			entry.ID, entry.Kind, entry.File.Name,
			humanize.IBytes(uint64(entry.File.Size)), entry.PreviewURL)
	}
	return nil
}

func removeUpload(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.mgr.RemoveOne(context.Background(), c.String("id")); err != nil {
		return err
	}
	fmt.Println("removed")
	return nil
}

func clearUploads(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	n := len(e.mgr.Entries())
	if err := e.mgr.RemoveAll(context.Background()); err != nil {
		return err
	}
	fmt.Printf("removed %d upload(s)\n", n)
	return nil
}
