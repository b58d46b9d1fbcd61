package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"fknsrs.biz/p/sorm"
	"github.com/gorilla/mux"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
	"github.com/tdewolff/minify/html"
	"github.com/tdewolff/minify/js"
	"github.com/urfave/negroni/v2"
	"go.etcd.io/bbolt"

	"fknsrs.biz/p/ytsnap/handlers"
	"fknsrs.biz/p/ytsnap/internal/config"
	"fknsrs.biz/p/ytsnap/internal/configreader"
	"fknsrs.biz/p/ytsnap/internal/ctxclock"
	"fknsrs.biz/p/ytsnap/internal/ctxconfig"
	"fknsrs.biz/p/ytsnap/internal/ctxdb"
	"fknsrs.biz/p/ytsnap/internal/ctxhttpclient"
	"fknsrs.biz/p/ytsnap/internal/ctxjobqueue"
	"fknsrs.biz/p/ytsnap/internal/ctxlogger"
	"fknsrs.biz/p/ytsnap/internal/ctxtemplate"
	"fknsrs.biz/p/ytsnap/internal/ctxtimer"
	"fknsrs.biz/p/ytsnap/internal/httpcache"
	"fknsrs.biz/p/ytsnap/internal/jobqueue"
	"fknsrs.biz/p/ytsnap/internal/logrusstackhook"
	"fknsrs.biz/p/ytsnap/internal/ptr"
	"fknsrs.biz/p/ytsnap/internal/queuenames"
	"fknsrs.biz/p/ytsnap/internal/snapshotfile"
	"fknsrs.biz/p/ytsnap/internal/sqlitelogger"
	"fknsrs.biz/p/ytsnap/internal/stringutil"
	"fknsrs.biz/p/ytsnap/internal/templatecollection"
	"fknsrs.biz/p/ytsnap/internal/ytscrape"
	"fknsrs.biz/p/ytsnap/models"
)

func init() {
	sorm.SetParameterPrefix("?")
}

var cfg = config.Config{
	LogLevel:             logrus.InfoLevel,
	LogDebugLevels:       config.LevelList{logrus.DebugLevel, logrus.TraceLevel},
	LogQueries:           config.LogQueries{Enabled: true, SlowerThan: time.Millisecond * 100},
	LogSORM:              false,
	ApplicationAddr:      ":8080",
	ApplicationDatabase:  "database.db",
	ApplicationCachePath: "cache.db",
	ApplicationDataPath:  "data",
	ApplicationMinify:    true,
	BackgroundWorkers:    1,
	ScrapeTimeout:        config.Duration(time.Second * 20),
	ScrapePaceInterval:   config.Duration(time.Millisecond * 500),
	ScrapeUserAgent:      ytscrape.DefaultUserAgent,
	ScrapeAcceptLanguage: ytscrape.DefaultAcceptLanguage,
	ScrapeMaxVideos:      30,
}

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func init() {
	for _, configPath := range []string{"config.toml", "config.yaml", "config.yml"} {
		if st, err := os.Stat(configPath); err == nil && st != nil && !st.IsDir() {
			cfg.Config = configPath
		}
	}
}

type simpleQueryLogger struct {
	logger *logrus.Logger
}

func (s *simpleQueryLogger) LogQuery(query string, args []interface{}) {
	fields := logrus.Fields{
		"db.query":      query,
		"db.args.count": len(args),
	}

	for i, e := range args {
		fields[fmt.Sprintf("db.args.%d", i)] = e
	}

	s.logger.WithFields(fields).Info("sorm query start")
}

func (s *simpleQueryLogger) LogQueryAfter(query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"db.query":      query,
		"db.duration":   duration,
		"db.error":      err,
		"db.args.count": len(args),
	}

	for i, e := range args {
		fields[fmt.Sprintf("db.args.%d", i)] = e
	}

	s.logger.WithFields(fields).Info("sorm query finish")
}

func main() {
	ctx := context.Background()

	if err := configreader.Read(os.Args[0], os.Args[1:], os.Environ(), &cfg); err != nil {
		panic(err)
	}

	ctx = ctxconfig.WithConfig(ctx, cfg)

	ctx = ctxclock.WithClock(ctx, ctxclock.NewRealClock())

	logger := logrus.New()

	logger.SetLevel(cfg.LogLevel)
	if len(cfg.LogDebugLevels) > 0 {
		logger.AddHook(logrusstackhook.NewStackHook(nil, cfg.LogDebugLevels, nil))
	}

	logger.WithFields(logrus.Fields{
		"config.config":                 cfg.Config,
		"config.log_level":              cfg.LogLevel,
		"config.log_debug_levels":       cfg.LogDebugLevels,
		"config.log_queries":            cfg.LogQueries,
		"config.log_sorm":               cfg.LogSORM,
		"config.application_addr":       cfg.ApplicationAddr,
		"config.application_cache_path": cfg.ApplicationCachePath,
		"config.application_database":   cfg.ApplicationDatabase,
		"config.application_data_path":  cfg.ApplicationDataPath,
		"config.application_minify":     cfg.ApplicationMinify,
		"config.background_workers":     cfg.BackgroundWorkers,
		"config.scrape_timeout":         cfg.ScrapeTimeout.String(),
		"config.scrape_pace_interval":   cfg.ScrapePaceInterval.String(),
		"config.scrape_max_videos":      cfg.ScrapeMaxVideos,
	}).Info("program starting")

	if cfg.LogSORM {
		sorm.SetQueryLogger(&simpleQueryLogger{logger})
	}

	ctx = ctxlogger.WithLogger(ctx, logger)

	dbDriver := "sqlite3"

	if !cfg.LogQueries.IsZero() {
		dbDriver = "sqlite3:logged"

		sql.Register(dbDriver, sqlitelogger.New(
			dbDriver,
			&sqlite3.SQLiteDriver{},
			&sqlitelogger.BasicFilter{
				LogSlowerThan: cfg.LogQueries.SlowerThan,
				IgnorePackageStackFrames: []string{
					// standard library
					"database/sql",
					"net/http",
					"runtime",
					// libraries
					"github.com/gorilla/mux",
					"github.com/shogo82148/go-sql-proxy",
					"github.com/urfave/negroni/v2",
					// middleware
					"fknsrs.biz/p/ytsnap/internal/ctxclock",
					"fknsrs.biz/p/ytsnap/internal/ctxdb",
					"fknsrs.biz/p/ytsnap/internal/ctxjobqueue",
					"fknsrs.biz/p/ytsnap/internal/ctxlogger",
					"fknsrs.biz/p/ytsnap/internal/ctxtemplate",
					"fknsrs.biz/p/ytsnap/internal/ctxtimer",
					"fknsrs.biz/p/ytsnap/internal/sqlitelogger",
					// main
					"main",
				},
				IgnoreFunctionQueries: []string{
					"fknsrs.biz/p/ytsnap/internal/jobqueue.(*Worker).Run",
				},
			},
		))
	}

	db, err := sql.Open(dbDriver, cfg.ApplicationDatabase)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if err := ensureSchema(ctx, db); err != nil {
		panic(err)
	}

	ctx = ctxdb.WithDB(ctx, db)

	cacheDB, err := bbolt.Open(cfg.ApplicationCachePath, 0600, nil)
	if err != nil {
		panic(err)
	}
	defer cacheDB.Close()

	ctx = ctxhttpclient.WithHTTPClient(ctx, &http.Client{
		Transport: httpcache.NewTransport(nil, httpcache.NewBBoltStorage(cacheDB), 0),
	})

	ctx = ctxjobqueue.WithWorker(ctx, jobqueue.NewWorker(nil))

	if err := registerJobQueueWorkerFunctions(ctx); err != nil {
		panic(err)
	}

	workers := []worker{
		{
			name: "application",
			run: func(ctx context.Context) error {
				return runApplicationWorker(ctx, cfg.ApplicationAddr)
			},
		},
	}

	for i := 0; i < cfg.BackgroundWorkers; i++ {
		workers = append(workers, worker{
			name: fmt.Sprintf("job_queue.%d", i),
			run: func(ctx context.Context) error {
				return runJobQueueWorker(ctx)
			},
		})
	}

	if err := runAllWorkers(ctx, workers); err != nil {
		panic(err)
	}
}

var schemaStatements = []string{
	`create table if not exists channels (
		id integer primary key autoincrement,
		created_at text not null,
		handle text not null unique,
		external_id text not null default '',
		title text not null default '',
		scraped_at text
	)`,
	`create table if not exists videos (
		id integer primary key autoincrement,
		created_at text not null,
		external_id text not null,
		channel_id integer,
		channel_external_id text not null default '',
		title text not null default '',
		description text,
		transcript text,
		duration_seconds integer,
		release_date text,
		published_text text not null default '',
		view_count integer,
		like_count integer,
		comment_count integer,
		video_url text not null default '',
		thumbnail text not null default '',
		scraped_at text
	)`,
	`create table if not exists jobs (
		id integer primary key autoincrement,
		created_at text not null,
		queue_name text not null,
		payload text not null,
		run_after text not null,
		failure_delay integer not null,
		attempts_remaining integer not null,
		reserved_at text,
		reserved_until text,
		finished_at text,
		error_messages text not null default '[]',
		output_messages text not null default '[]',
		progress integer
	)`,
	`create virtual table if not exists channel_search using fts5(
		channel_title,
		channel_handle,
		channel_id unindexed,
		channel_created_at unindexed,
		channel_external_id unindexed,
		channel_scraped_at unindexed
	)`,
	`create virtual table if not exists video_search using fts5(
		video_title,
		channel_title,
		channel_handle unindexed,
		channel_id unindexed,
		channel_external_id unindexed,
		video_id unindexed,
		video_created_at unindexed,
		video_external_id unindexed,
		video_duration_seconds unindexed,
		video_release_date unindexed,
		video_published_text unindexed,
		video_view_count unindexed,
		video_thumbnail unindexed,
		video_scraped_at unindexed
	)`,
	`create trigger if not exists channels_ai after insert on channels begin
		insert into channel_search (channel_id, channel_created_at, channel_handle, channel_external_id, channel_title, channel_scraped_at)
		values (new.id, new.created_at, new.handle, new.external_id, new.title, new.scraped_at);
	end`,
	`create trigger if not exists channels_au after update on channels begin
		delete from channel_search where channel_id = old.id;
		insert into channel_search (channel_id, channel_created_at, channel_handle, channel_external_id, channel_title, channel_scraped_at)
		values (new.id, new.created_at, new.handle, new.external_id, new.title, new.scraped_at);
	end`,
	`create trigger if not exists channels_ad after delete on channels begin
		delete from channel_search where channel_id = old.id;
	end`,
	`create trigger if not exists videos_ai after insert on videos begin
		insert into video_search (video_title, channel_title, channel_handle, channel_id, channel_external_id, video_id, video_created_at, video_external_id, video_duration_seconds, video_release_date, video_published_text, video_view_count, video_thumbnail, video_scraped_at)
		values (
			new.title,
			coalesce((select title from channels where id = new.channel_id), ''),
			coalesce((select handle from channels where id = new.channel_id), ''),
			new.channel_id,
			new.channel_external_id,
			new.id,
			new.created_at,
			new.external_id,
			new.duration_seconds,
			new.release_date,
			new.published_text,
			new.view_count,
			new.thumbnail,
			new.scraped_at
		);
	end`,
	`create trigger if not exists videos_au after update on videos begin
		delete from video_search where video_id = old.id;
		insert into video_search (video_title, channel_title, channel_handle, channel_id, channel_external_id, video_id, video_created_at, video_external_id, video_duration_seconds, video_release_date, video_published_text, video_view_count, video_thumbnail, video_scraped_at)
		values (
			new.title,
			coalesce((select title from channels where id = new.channel_id), ''),
			coalesce((select handle from channels where id = new.channel_id), ''),
			new.channel_id,
			new.channel_external_id,
			new.id,
			new.created_at,
			new.external_id,
			new.duration_seconds,
			new.release_date,
			new.published_text,
			new.view_count,
			new.thumbnail,
			new.scraped_at
		);
	end`,
	`create trigger if not exists videos_ad after delete on videos begin
		delete from video_search where video_id = old.id;
	end`,
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensureSchema: %w", err)
		}
	}

	return nil
}

type worker struct {
	name string
	run  func(ctx context.Context) error
}

func runAllWorkers(ctx context.Context, workers []worker) error {
	done := make(chan error, len(workers))
	cancellers := make([]context.CancelCauseFunc, len(workers))

	var rw sync.RWMutex

	for id, w := range workers {
		go func(id int, w worker) {
			for {
				l := ctxlogger.GetLogger(ctx).WithFields(logrus.Fields{
					"worker.id":   id + 1,
					"worker.name": w.name,
				})

				ctx, cancel := context.WithCancelCause(ctxlogger.WithLogger(ctx, l))

				rw.Lock()
				cancellers[id] = cancel
				rw.Unlock()

				if err := w.run(ctx); err != nil {
					l.WithError(err).Error("worker failed")

					rw.RLock()
					for _, fn := range cancellers {
						if fn == nil {
							continue
						}

						fn(fmt.Errorf("worker %d (%s) failed: %w", id+1, w.name, err))
					}
					rw.RUnlock()
				} else {
					l.Info("worker restarted")
				}

				time.Sleep(time.Second)
			}
		}(id, w)
	}

	var errs []error
	for err := range done {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func directoryExists(name string) bool {
	st, err := os.Stat(name)
	if err != nil {
		return false
	}
	return st.IsDir()
}

type FieldNameValuePair struct {
	Name  string
	Value interface{}
}

func runApplicationWorker(ctx context.Context, addr string) error {
	l := ctxlogger.GetLogger(ctx)

	l.WithFields(logrus.Fields{
		"args.addr": addr,
	}).Info("running application worker")

	templateFuncs := template.FuncMap{
		"slice_length": func(v interface{}) int {
			val := reflect.ValueOf(v)
			if val.Kind() != reflect.Slice {
				panic(fmt.Errorf("expected input to be a slice"))
			}
			return val.Len()
		},
		"field_names": func(v interface{}) []string {
			typ := reflect.TypeOf(v)
			if typ.Kind() == reflect.Ptr {
				typ = typ.Elem()
			}
			if typ.Kind() == reflect.Slice {
				typ = typ.Elem()
			}

			var a []string
			for i := 0; i < typ.NumField(); i++ {
				a = append(a, typ.Field(i).Name)
			}

			return a
		},
		"field_name_value_pairs": func(v interface{}) []FieldNameValuePair {
			val := reflect.ValueOf(v)
			if val.Kind() == reflect.Ptr {
				val = reflect.Indirect(val)
			}
			if val.Kind() != reflect.Struct {
				panic(fmt.Errorf("expected input value to be a struct"))
			}

			typ := val.Type()

			var a []FieldNameValuePair
			for i := 0; i < typ.NumField(); i++ {
				a = append(a, FieldNameValuePair{typ.Field(i).Name, val.Field(i).Interface()})
			}

			return a
		},
		"first_of": func(a ...interface{}) string {
			for _, e := range a {
				if s := fmt.Sprintf("%v", e); s != "" {
					return s
				}
			}

			return ""
		},
		"format_appropriately": func(obj interface{}, v interface{}) interface{} {
			if v, ok := v.(interface{ FormatAsHTML() template.HTML }); ok {
				return v.FormatAsHTML()
			}

			switch v := v.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				if v == nil {
					return "never"
				}
				return v.Format(time.RFC3339)
			default:
				return v
			}
		},
		"format_time": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"format_time_null": func(t *time.Time) string {
			if t == nil {
				return ""
			}

			return t.Format(time.RFC3339)
		},
		"format_date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"format_date_null": func(t *time.Time) string {
			if t == nil {
				return ""
			}

			return t.Format("2006-01-02")
		},
		"format_count_null": func(v *int64) string {
			if v == nil {
				return "unknown"
			}

			return strconv.FormatInt(*v, 10)
		},
		"format_duration_null": func(v *int) string {
			if v == nil {
				return "unknown"
			}

			d := time.Duration(*v) * time.Second
			if d >= time.Hour {
				return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
			}

			return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
		},
		"format_time_relative": func(t time.Time) string {
			return time.Now().Sub(t).String()
		},
		"pascal_to_snake": stringutil.PascalToSnake,
		"pascal_to_title": stringutil.PascalToTitle,
		"make_map": func(args ...interface{}) map[string]interface{} {
			m := make(map[string]interface{})

			for i := 0; i < len(args)/2; i++ {
				kv := args[i*2]
				vv := args[i*2+1]

				k, ok := kv.(string)
				if !ok {
					panic(fmt.Errorf("key value should be string; was instead %T", kv))
				}

				m[k] = vv
			}

			return m
		},
		"make_string_list": func(items ...string) []string {
			return items
		},
	}

	var templates templatecollection.Collection

	if directoryExists("templates") {
		l.Info("using live filesystem for templates")
		c, err := templatecollection.NewLive(os.DirFS("templates"), templateFuncs)
		if err != nil {
			return fmt.Errorf("runApplicationWorker: %w", err)
		}
		templates = c
	} else {
		l.Info("using embedded filesystem for templates")
		c, err := templatecollection.NewCached(templateFS, templateFuncs)
		if err != nil {
			return fmt.Errorf("runApplicationWorker: %w", err)
		}
		templates = c
	}

	m := mux.NewRouter()

	m.Methods(http.MethodGet).Path("/").HandlerFunc(handlers.Index)
	m.Methods(http.MethodGet).Path("/add").HandlerFunc(handlers.Add)
	m.Methods(http.MethodPost).Path("/add").HandlerFunc(handlers.AddAction)
	m.Methods(http.MethodGet).Path("/channels").HandlerFunc(handlers.Channels)
	m.Methods(http.MethodGet).Path("/channels/{id}").HandlerFunc(handlers.Channel)
	m.Methods(http.MethodGet).Path("/channels/{id}/snapshot.json").HandlerFunc(handlers.ChannelSnapshotJSON)
	m.Methods(http.MethodGet).Path("/videos").HandlerFunc(handlers.Videos)
	m.Methods(http.MethodGet).Path("/videos/{id}").HandlerFunc(handlers.Video)
	m.Methods(http.MethodPost).Path("/videos/{id}/refresh").HandlerFunc(handlers.VideoRefreshAction)
	m.Methods(http.MethodGet).Path("/jobs").HandlerFunc(handlers.Jobs)
	m.Methods(http.MethodGet).Path("/jobs/updates").HandlerFunc(handlers.JobsSSE)

	if directoryExists("static") {
		l.Info("using live filesystem for static files")
		m.Methods(http.MethodGet).PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	} else {
		l.Info("using embedded filesystem for static files")
		m.Methods(http.MethodGet).PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	m.Methods(http.MethodGet).PathPrefix("/data/").Handler(http.StripPrefix("/data/", http.FileServer(http.Dir(ctxconfig.GetConfig(ctx).ApplicationDataPath))))

	min := minify.New()
	min.Add("text/html", html.DefaultMinifier)
	min.Add("text/css", css.DefaultMinifier)
	min.Add("application/javascript", js.DefaultMinifier)

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseFunc(ctxlogger.Register(l))
	n.UseFunc(ctxtimer.Register(nil))
	n.UseFunc(ctxclock.Register(ctxclock.GetClock(ctx)))
	n.UseFunc(ctxtemplate.Register(templates))
	n.UseFunc(ctxdb.Register(ctxdb.GetDB(ctx)))
	n.UseFunc(ctxjobqueue.Register(ctxjobqueue.GetWorker(ctx)))
	n.UseFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(ctxconfig.WithConfig(r.Context(), cfg)))
	})
	n.UseFunc(ctxtimer.AddLoggerHooks())
	n.UseFunc(ctxclock.AddLoggerHooks())
	n.UseFunc(ctxlogger.Log())

	n.UseFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
		next(rw, r.WithContext(ctxtemplate.WithData(r.Context(), map[string]interface{}{
			"Messages": struct{ Error, Success, Information string }{
				r.URL.Query().Get("error"),
				r.URL.Query().Get("success"),
				r.URL.Query().Get("information"),
			},
		})))
	})

	if cfg.ApplicationMinify {
		n.UseFunc(func(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
			if strings.ToLower(r.Header.Get("connection")) != "upgrade" {
				mw := min.ResponseWriter(rw, r)
				defer mw.Close()
				rw = mw
			}

			next(rw, r)
		})
	}

	n.UseHandler(m)

	s := &http.Server{
		Addr:        addr,
		Handler:     n,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		l.Info("starting server")
		errs <- s.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return s.Shutdown(ctx)
	}
}

func scrapeOptions() ytscrape.Options {
	return ytscrape.Options{
		UserAgent:      cfg.ScrapeUserAgent,
		AcceptLanguage: cfg.ScrapeAcceptLanguage,
		Timeout:        cfg.ScrapeTimeout.Std(),
		PaceInterval:   cfg.ScrapePaceInterval.Std(),
	}
}

func registerJobQueueWorkerFunctions(ctx context.Context) error {
	l := ctxlogger.GetLogger(ctx)

	l.Info("registering job queue worker functions")

	w := ctxjobqueue.GetWorker(ctx)
	if w == nil {
		return fmt.Errorf("job queue worker not available in context")
	}

	return w.RegisterAll(map[string]jobqueue.WorkerFunction{
		queuenames.ChannelScrape: func(ctx context.Context, w *jobqueue.Worker, j *jobqueue.Job) (string, error) {
			handle, params, err := jobqueue.ParsePayload(j.Payload)
			if err != nil {
				return "", err
			}

			maxVideos := cfg.ScrapeMaxVideos
			if s := params.Get("max_videos"); s != "" {
				v, err := strconv.Atoi(s)
				if err != nil {
					return "", fmt.Errorf("could not parse max_videos parameter: %w", err)
				}
				maxVideos = v
			}

			opts := scrapeOptions()
			opts.Progress = func(done, total int) {
				if total == 0 {
					return
				}
				if err := w.UpdateProgress(ctx, j, done*100/total); err != nil {
					ctxlogger.GetLogger(ctx).WithError(err).Warn("could not update job progress")
				}
			}

			snapshot, err := ytscrape.ScrapeChannel(ctx, opts, "@"+handle, maxVideos)
			if err != nil {
				return "", err
			}

			now := time.Now()

			if err := ctxdb.UsingTx(ctx, nil, func(ctx context.Context, tx *sql.Tx) error {
				var channel models.Channel
				if err := sorm.FindFirstWhere(ctx, tx, &channel, "where handle = ?", handle); err != nil {
					if err != sql.ErrNoRows {
						return err
					}

					channel.CreatedAt = now
					channel.Handle = handle
					channel.ExternalID = snapshot.ChannelID
					channel.Title = snapshot.ChannelTitle
					channel.ScrapedAt = ptr.Time(now)

					if err := sorm.CreateRecord(ctx, tx, &channel); err != nil {
						return err
					}
				} else {
					channel.ExternalID = snapshot.ChannelID
					channel.Title = snapshot.ChannelTitle
					channel.ScrapedAt = ptr.Time(now)

					if err := sorm.SaveRecord(ctx, tx, &channel); err != nil {
						return err
					}
				}

				// each scrape replaces the channel's rows wholesale;
				// the snapshot files keep history
				if _, err := tx.ExecContext(ctx, "delete from videos where channel_id = ?", channel.ID); err != nil {
					return err
				}

				for _, record := range snapshot.Videos {
					if err := sorm.CreateRecord(ctx, tx, &models.Video{
						CreatedAt:         now,
						ExternalID:        record.VideoID,
						ChannelID:         &channel.ID,
						ChannelExternalID: channel.ExternalID,
						Title:             record.Title,
						Description:       record.Description,
						Transcript:        record.Transcript,
						DurationSeconds:   record.DurationSeconds,
						ReleaseDate:       record.ReleaseDate,
						PublishedText:     record.PublishedText,
						ViewCount:         record.ViewCount,
						LikeCount:         record.LikeCount,
						CommentCount:      record.CommentCount,
						VideoURL:          record.VideoURL,
						Thumbnail:         record.Thumbnail,
						ScrapedAt:         ptr.Time(now),
					}); err != nil {
						return err
					}
				}

				return nil
			}); err != nil {
				return "", err
			}

			name, err := snapshotfile.Write(cfg.DataFile("snapshots", ""), snapshot, now)
			if err != nil {
				ctxlogger.GetLogger(ctx).WithError(err).Warn("could not write snapshot file")
				return fmt.Sprintf("scraped %d videos; snapshot file failed", len(snapshot.Videos)), nil
			}

			return fmt.Sprintf("scraped %d videos; snapshot saved to %s", len(snapshot.Videos), name), nil
		},
		queuenames.VideoRefresh: func(ctx context.Context, w *jobqueue.Worker, j *jobqueue.Job) (string, error) {
			externalID, _, err := jobqueue.ParsePayload(j.Payload)
			if err != nil {
				return "", err
			}

			var video models.Video
			if err := sorm.FindFirstWhere(ctx, ctxdb.GetDB(ctx), &video, "where external_id = ?", externalID); err != nil {
				return "", err
			}

			record, err := ytscrape.FetchVideo(ctx, scrapeOptions(), ytscrape.VideoStub{
				VideoID:       video.ExternalID,
				Title:         video.Title,
				PublishedText: video.PublishedText,
			})
			if err != nil {
				return "", err
			}

			now := time.Now()

			if err := ctxdb.UsingTx(ctx, nil, func(ctx context.Context, tx *sql.Tx) error {
				var video models.Video
				if err := sorm.FindFirstWhere(ctx, tx, &video, "where external_id = ?", externalID); err != nil {
					return err
				}

				video.Title = record.Title
				video.Description = record.Description
				video.Transcript = record.Transcript
				video.DurationSeconds = record.DurationSeconds
				video.ReleaseDate = record.ReleaseDate
				video.ViewCount = record.ViewCount
				video.LikeCount = record.LikeCount
				video.CommentCount = record.CommentCount
				video.VideoURL = record.VideoURL
				video.Thumbnail = record.Thumbnail
				video.ScrapedAt = ptr.Time(now)

				return sorm.SaveRecord(ctx, tx, &video)
			}); err != nil {
				return "", err
			}

			return "refreshed video " + externalID, nil
		},
	})
}

func runJobQueueWorker(ctx context.Context) error {
	l := ctxlogger.GetLogger(ctx)

	l.Info("running job queue worker")

	w := ctxjobqueue.GetWorker(ctx)
	if w == nil {
		return fmt.Errorf("job queue worker not available in context")
	}

	return w.Run(ctx)
}
