package config

import "os"

// Config параметры процесса; читаются из окружения с дефолтами
type Config struct {
	Addr    string // адрес HTTP-сервера
	DataDir string // каталог файлов key-value хранилища
	GinMode string // режим gin; пусто — оставить как есть
}

func FromEnv() Config {
	return Config{
		Addr:    getenv("VITRINE_ADDR", ":9091"),
		DataDir: getenv("VITRINE_DATA_DIR", "data"),
		GinMode: os.Getenv("VITRINE_GIN_MODE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
