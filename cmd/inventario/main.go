package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/internal/infrastructure/fsutil"
	"github.com/jhoicas/inventario-desktop/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-desktop/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-desktop/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/inventario-desktop/internal/interfaces/http"
	"github.com/jhoicas/inventario-desktop/pkg/config"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("file", cfg.Inventory.File).
		Msg("iniciando aplicación")

	recorder := metrics.NewRecorder("inventario")
	store := xlsx.NewFileStore(xlsx.NewCodec(xlsx.WithHistory(cfg.Inventory.History)))
	ctrl := session.NewController(store,
		session.WithLogger(log.Component("session")),
		session.WithMetrics(recorder),
		session.WithIOTimeout(cfg.Inventory.IOTimeout),
		session.WithReports(infrapdf.NewMarotoReportGenerator(cfg.App.Name)),
		session.WithSheetEncoder(xlsx.EncodeView),
		session.WithExportDir(cfg.Inventory.ExportDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := openOrCreate(ctx, ctrl, cfg.Inventory.File); err != nil {
		log.Fatal().Err(err).Str("path", cfg.Inventory.File).Msg("abrir libro de inventario")
	}

	go ctrl.RunAutosave(ctx, cfg.Inventory.AutosaveInterval)

	if err := publishToken(ctx, cfg.HTTP.TokenFile, cfg.HTTP.Token); err != nil {
		log.Fatal().Err(err).Str("path", cfg.HTTP.TokenFile).Msg("publicar token de la API")
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          cfg.Inventory.IOTimeout + 5*time.Second,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		st := ctrl.State()
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "open": st.Open, "dirty": st.Dirty})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:   ctrl,
		Registry: recorder.Registry(),
		Logger:   log.Component("http"),
		Token:    cfg.HTTP.Token,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Inventory.IOTimeout+10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Guardar los cambios pendientes antes de descartar el catálogo.
	if _, err := ctrl.SaveIfDirty(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("guardado final")
	}
	if err := ctrl.Close(); err != nil {
		log.Warn().Err(err).Msg("cerrar sesión")
	}

	log.Info().Msg("aplicación detenida")
}

// publishToken deja el token legible solo por el usuario actual.
func publishToken(ctx context.Context, path, token string) error {
	return fsutil.WriteFileAtomicPerm(ctx, path, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, token+"\n")
		return err
	})
}

// openOrCreate abre path; si no existe arranca un catálogo vacío que se guardará ahí.
func openOrCreate(ctx context.Context, ctrl *session.Controller, path string) error {
	err := ctrl.Open(ctx, path)
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := ctrl.New(); err != nil {
		return err
	}
	return ctrl.Save(ctx, path)
}
