package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Embedding EmbeddingConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	OCR       OCRConfig
	Matching  MatchingConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type EmbeddingConfig struct {
	// Backend is "gemini" or "ollama".
	Backend           string
	GeminiAPIKey      string
	GeminiModel       string
	OllamaURL         string
	OllamaModel       string
	CacheSize         int
	RequestsPerSecond float64
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type OCRConfig struct {
	Enabled        bool
	TesseractCmd   string
	PdftoppmCmd    string
	DPI            int
	MinConfidence  float64
	MinNativeChars int
}

type MatchingConfig struct {
	TaxonomyPath      string
	SemanticThreshold float64
	MinSentenceLength int
	// SkillIndex is "memory" or "qdrant".
	SkillIndex string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	// A missing .env is fine; the environment and defaults still apply.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_screener"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_skills"),
		},
		Embedding: EmbeddingConfig{
			Backend:           getEnv("EMBEDDING_BACKEND", "ollama"),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBED_MODEL", "all-minilm"),
			CacheSize:         getEnvAsInt("EMBEDDING_CACHE_SIZE", 5000),
			RequestsPerSecond: getEnvAsFloat("EMBEDDING_RPS", 0),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		OCR: OCRConfig{
			Enabled:        getEnvAsBool("OCR_ENABLED", true),
			TesseractCmd:   getEnv("TESSERACT_CMD", "tesseract"),
			PdftoppmCmd:    getEnv("PDFTOPPM_CMD", "pdftoppm"),
			DPI:            getEnvAsInt("OCR_DPI", 300),
			MinConfidence:  getEnvAsFloat("OCR_CONFIDENCE", 50),
			MinNativeChars: getEnvAsInt("OCR_MIN_NATIVE_CHARS", 50),
		},
		Matching: MatchingConfig{
			TaxonomyPath:      getEnv("TAXONOMY_PATH", "./config/skills.yaml"),
			SemanticThreshold: getEnvAsFloat("SEMANTIC_THRESHOLD", 0.72),
			MinSentenceLength: getEnvAsInt("SEMANTIC_MIN_SENTENCE", 20),
			SkillIndex:        getEnv("SKILL_INDEX", "memory"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
