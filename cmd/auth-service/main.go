// Package main запускает сервис входа: проверку email/пароля и выдачу
// сессионных JWT-токенов.
//
// Команды:
//
//	auth-service serve          HTTP-сервер
//	auth-service migrate        применить схему security.* к БД
//	auth-service hash-password  bcrypt-хеш для заведения пользователя
//
// Безопасность:
//   - Пароли хешируются bcrypt (cost=12)
//   - Все попытки входа аудируются в security.login_attempts
//   - Успешные входы сохраняются в security.sessions
//
// Запуск:
//
//	go run . serve --env-file .env
package main

import (
	"fmt"
	"os"

	"github.com/r2r72/login-service/internal/config"
	"github.com/r2r72/login-service/internal/repository/pg"
	"github.com/r2r72/login-service/internal/service/auth"
	"github.com/spf13/cobra"
)

// Compile-time check: pg.AuthRepository реализует auth.AuthRepository
var _ auth.AuthRepository = (*pg.AuthRepository)(nil)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "auth-service",
	Short:         "Credential login and session issuance service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// .env обязателен, только если путь задан явно
		return config.LoadEnvFile(envFile, cmd.Flags().Changed("env-file"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
