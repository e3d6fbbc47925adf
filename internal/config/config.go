package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート

	DBDriver    string // postgres / mysql
	DatabaseURL string // DSN直指定（あれば最優先）

	DBHost     string // DBホスト（localhost）
	DBPort     string // DBポート
	DBUser     string // DBユーザー
	DBPassword string // DBパスワード
	DBName     string // DB名
	DBSSLMode  string // postgresのみ

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DBDriver:    getenv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "storefront"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: getenv("FE_URL", "http://localhost:5173"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	//対応ドライバだけ許可
	switch cfg.DBDriver {
	case "postgres", "mysql":
		// OK
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or mysql: got %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
