package main

import "github.com/lrcr/todoplane/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectStore()
	defer app.DisconnectStore()

	app.MustListenAndServeHTTP()
}
