package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Inventory InventoryConfig
	HTTP      HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string
}

// InventoryConfig libro de inventario y su ciclo de guardado.
type InventoryConfig struct {
	File             string        // libro abierto al iniciar (se crea al primer guardado si no existe)
	History          bool          // escribir la hoja Movements
	AutosaveInterval time.Duration // 0 = sin autoguardado
	IOTimeout        time.Duration // límite de cada carga/guardado
	ExportDir        string
}

// HTTPConfig configuración del servidor HTTP local.
type HTTPConfig struct {
	Host      string
	Port      int
	Token     string // Bearer token exigido en /api; se genera uno por arranque si no se indica
	TokenFile string // donde se publica el token para la interfaz gráfica
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, INVENTORY_FILE, HTTP_PORT, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	autosave, err := getDuration(v, "AUTOSAVE_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	ioTimeout, err := getDuration(v, "IO_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	if ioTimeout <= 0 {
		return nil, fmt.Errorf("config: IO_TIMEOUT debe ser positivo: %s", ioTimeout)
	}
	port := getInt(v, "HTTP_PORT", 8765)
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("config: HTTP_PORT fuera de rango: %d", port)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventario"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Inventory: InventoryConfig{
			File:             getString(v, "INVENTORY_FILE", "data/inventario.xlsx"),
			History:          getBool(v, "INVENTORY_HISTORY", true),
			AutosaveInterval: autosave,
			IOTimeout:        ioTimeout,
			ExportDir:        getString(v, "EXPORT_DIR", "exports"),
		},
		HTTP: HTTPConfig{
			Host:      getString(v, "HTTP_HOST", "127.0.0.1"),
			Port:      port,
			Token:     strings.TrimSpace(getString(v, "HTTP_TOKEN", "")),
			TokenFile: getString(v, "HTTP_TOKEN_FILE", "data/.api-token"),
		},
	}

	if cfg.HTTP.Token == "" {
		cfg.HTTP.Token = uuid.NewString()
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

// getDuration acepta "90s", "5m" o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) (time.Duration, error) {
	if !v.IsSet(key) {
		return def, nil
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s inválido %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s negativo: %s", key, raw)
	}
	return d, nil
}
