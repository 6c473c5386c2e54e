package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/vidmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VIDMATCH_WORKER_COUNT", "16")
			_ = os.Setenv("VIDMATCH_QUERY_TIMEOUT", "20s")
			_ = os.Setenv("VIDMATCH_PERSIST_THRESHOLD", "0.8")
			_ = os.Setenv("VIDMATCH_LOCALES", "en, it ,,fr")
			_ = os.Setenv("VIDMATCH_KEEP_BEST_DUPLICATE", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.QueryTimeout, convey.ShouldEqual, 20*time.Second)
				convey.So(cfg.PersistThreshold, convey.ShouldEqual, 0.8)
				convey.So(cfg.Locales, convey.ShouldResemble, []string{"en", "it", "fr"})
				convey.So(cfg.KeepBestDuplicate, convey.ShouldBeTrue)
				convey.So(cfg.QueueSize, convey.ShouldEqual, config.DefaultQueueSize)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
input_path: catalog.jsonl
output_path: out/matches.jsonl
worker_count: 4
query_timeout: 30s
junk_words: [restored, version]
fold_diacritics: true
`)

			convey.Convey("Then it should load from the file given", func() {
				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InputPath, convey.ShouldEqual, "catalog.jsonl")
				convey.So(cfg.OutputPath, convey.ShouldEqual, "out/matches.jsonl")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.QueryTimeout, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.JunkWords, convey.ShouldResemble, []string{"restored", "version"})
				convey.So(cfg.FoldDiacritics, convey.ShouldBeTrue)
			})

			convey.Convey("Then it should load from VIDMATCH_CONFIG", func() {
				_ = os.Setenv(config.EnvConfig, path)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})

			convey.Convey("Then env vars should take precedence over the file", func() {
				_ = os.Setenv("VIDMATCH_WORKER_COUNT", "32")
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.QueryTimeout, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then a load error should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file is not valid YAML", func() {
			path := writeConfigFile(t, "worker_count: [unterminated\n")
			_, err := config.Load(ctx, path)

			convey.Convey("Then a load error should be returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a loaded value is invalid", func() {
			_ = os.Setenv("VIDMATCH_DURATION_MIN_RATIO", "2")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx, "")

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vidmatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		config.EnvConfig,
		"VIDMATCH_WORKER_COUNT",
		"VIDMATCH_QUERY_TIMEOUT",
		"VIDMATCH_PERSIST_THRESHOLD",
		"VIDMATCH_LOCALES",
		"VIDMATCH_KEEP_BEST_DUPLICATE",
		"VIDMATCH_DURATION_MIN_RATIO",
	} {
		_ = os.Unsetenv(key)
	}
}
