package utils

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig reads the optional .env file in path and primes viper so
// flags, env vars and the .env file all resolve through the same lookup.
func LoadConfig(path string) {
	if err := godotenv.Load(path + "/.env"); err != nil {
		logrus.Debugf("[CONFIG] No .env file loaded: %v", err)
	}

	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debugf("[CONFIG] viper config not read: %v", err)
	}
}
