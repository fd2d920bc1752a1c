// internal/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FirebaseConfig は外部IDプロバイダ(Firebase)への接続設定です。
// APIKey はパスワードグラント(REST)用、CredentialsFile は Admin SDK 用。
type FirebaseConfig struct {
	ProjectID       string        `mapstructure:"project_id"`
	APIKey          string        `mapstructure:"api_key"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	VerifyTimeout   time.Duration `mapstructure:"verify_timeout"`
	GrantTimeout    time.Duration `mapstructure:"grant_timeout"`
	AccountTimeout  time.Duration `mapstructure:"account_timeout"`
	VerifyRetries   int           `mapstructure:"verify_retries"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // "log", "smtp", "ses"
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	From            string `mapstructure:"from"`
	AuthType        string `mapstructure:"auth_type"` // "iam_role" or "static_credentials"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// RegistryConfig はサービスレジストリ(Eureka)への自己登録設定です。
// 認証ロジックとは独立した、任意のプロセスライフサイクルフックとして扱う。
type RegistryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	EurekaURL         string        `mapstructure:"eureka_url"`
	AppName           string        `mapstructure:"app_name"`
	InstanceHost      string        `mapstructure:"instance_host"`
	InstancePort      int           `mapstructure:"instance_port"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
	Registry RegistryConfig `mapstructure:"registry"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数での上書きを許可 (例: APP_FIREBASE_API_KEY)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("firebase.api_key", "FIREBASE_API_KEY")
	viper.BindEnv("firebase.project_id", "FIREBASE_PROJECT_ID")
	viper.BindEnv("firebase.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.App.Name == "" {
		Cfg.App.Name = AppName
	}
	if Cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}

	// プロバイダ呼び出しのタイムアウトは必ず有限にする (タイムアウト時はフェイルクローズ)
	if Cfg.Firebase.VerifyTimeout <= 0 {
		Cfg.Firebase.VerifyTimeout = DefaultVerifyTimeout
	}
	if Cfg.Firebase.GrantTimeout <= 0 {
		Cfg.Firebase.GrantTimeout = DefaultGrantTimeout
	}
	if Cfg.Firebase.AccountTimeout <= 0 {
		Cfg.Firebase.AccountTimeout = DefaultAccountTimeout
	}
	if Cfg.Firebase.VerifyRetries < 0 {
		Cfg.Firebase.VerifyRetries = 0
	}

	// Auth.Enabled のデフォルト値を設定 (未設定なら true = 有効 にする)
	if !viper.IsSet("auth.enabled") {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		Cfg.Auth.Enabled = true
	}

	if Cfg.Registry.HeartbeatInterval <= 0 {
		Cfg.Registry.HeartbeatInterval = DefaultHeartbeatInterval
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Firebase Project: %s", Cfg.Firebase.ProjectID)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)

	return nil
}
