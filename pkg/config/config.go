package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	AppsDB    DBConfig
	CoreDB    DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Upload    UploadConfig
	Cache     CacheConfig
	Reconcile ReconcileConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// Enabled indica si hay datos de conexión (la base core es opcional).
func (c DBConfig) Enabled() bool {
	return c.DatabaseURL != "" || c.Host != ""
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig almacenamiento de archivos: "s3" (S3/MinIO) o "local".
type StorageConfig struct {
	Driver       string
	S3Endpoint   string
	S3Key        string
	S3Secret     string
	S3Bucket     string
	S3Region     string
	S3PathStyle  bool
	S3URLBase    string // opcional: base pública de los archivos
	LocalDir     string
	LocalURLBase string
}

// RedisConfig caché compartida. URL vacía = caché en memoria por proceso.
type RedisConfig struct {
	URL string
}

// UploadConfig límites de carga de adjuntos.
type UploadConfig struct {
	MaxBytes int64
}

// CacheConfig TTLs de caché.
type CacheConfig struct {
	PermissionTTLSeconds  int
	TaskSummaryTTLSeconds int
}

// ReconcileConfig programación cron de la reconciliación del espejo de usuarios.
type ReconcileConfig struct {
	Schedule string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "punchlist"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		AppsDB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "punchlist"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "punchlist"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		// Sin CORE_DATABASE_URL ni CORE_DB_HOST la base core queda deshabilitada.
		CoreDB: DBConfig{
			DatabaseURL: getString(v, "CORE_DATABASE_URL", ""),
			Host:        getString(v, "CORE_DB_HOST", ""),
			Port:        getInt(v, "CORE_DB_PORT", 5432),
			User:        getString(v, "CORE_DB_USER", "core_user"),
			Password:    getString(v, "CORE_DB_PASSWORD", ""),
			DBName:      getString(v, "CORE_DB_NAME", "core_db"),
			SSLMode:     getString(v, "CORE_DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "CORE_DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "punchlist"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Storage: StorageConfig{
			Driver:       getString(v, "STORAGE_DRIVER", "local"),
			S3Endpoint:   getString(v, "S3_ENDPOINT", ""),
			S3Key:        getString(v, "S3_KEY", ""),
			S3Secret:     getString(v, "S3_SECRET", ""),
			S3Bucket:     getString(v, "S3_BUCKET", "punchlist"),
			S3Region:     getString(v, "S3_REGION", "us-east-1"),
			S3PathStyle:  getBool(v, "S3_USE_PATH_STYLE", true),
			S3URLBase:    getString(v, "S3_URL_BASE", ""),
			LocalDir:     getString(v, "STORAGE_LOCAL_DIR", "./storage"),
			LocalURLBase: getString(v, "STORAGE_LOCAL_URL_BASE", "/files"),
		},
		Redis: RedisConfig{
			URL: getString(v, "REDIS_URL", ""),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getInt(v, "UPLOAD_MAX_BYTES", 80*1024*1024)),
		},
		Cache: CacheConfig{
			PermissionTTLSeconds:  getInt(v, "PERMISSION_CACHE_TTL_SECONDS", 300),
			TaskSummaryTTLSeconds: getInt(v, "TASK_SUMMARY_CACHE_TTL_SECONDS", 30),
		},
		Reconcile: ReconcileConfig{
			Schedule: getString(v, "MIRROR_RECONCILE_SCHEDULE", "@every 15m"),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en producción")
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
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
