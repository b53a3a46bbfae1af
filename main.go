package main

import (
	"fmt"
	"net/http"

	"github.com/fatman2021/pcbasic/pkg/configuration"
	"github.com/fatman2021/pcbasic/pkg/logger"
	"github.com/fatman2021/pcbasic/pkg/session"
	"github.com/fatman2021/pcbasic/pkg/terminal"
	"github.com/fatman2021/pcbasic/pkg/virtualfs"
)

func main() {
	// Initialize configuration before everything else
	configPath := "settings.cfg"
	if err := configuration.Initialize(configPath); err != nil {
		fmt.Printf("Error initializing configuration: %v\n", err)
		return
	}

	if err := logger.Initialize(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		return
	}
	defer logger.Close()
	logger.ConfigInfo("System started - Configuration loaded from: %s", configPath)

	// Database initialization
	dbPath := configuration.GetString("FileSystem", "database_file", "pcbasic.db")
	db, err := virtualfs.OpenDatabase(dbPath)
	if err != nil {
		logger.Fatal(logger.AreaDatabase, "Database initialization failed: %v", err)
	}
	defer db.Close()
	logger.Info(logger.AreaDatabase, "Database initialized: %s", dbPath)

	vfs := virtualfs.New(db)
	logger.Info(logger.AreaFileSystem, "Virtual filesystem initialized")

	server := terminal.NewServer(vfs)
	server.OnSession = runEchoSession
	http.HandleFunc("/ws", server.HandleTerminal)

	addr := configuration.GetString("Network", "listen_address", "localhost:8080")
	logger.Info(logger.AreaGeneral, "Listening on %s", addr)
	fmt.Printf("Device server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal(logger.AreaGeneral, "Server failed: %v", err)
	}
}

// runEchoSession drives a connected console through the device layer:
// lines read from KYBD: are echoed back on SCRN: until the connection
// drops.
func runEchoSession(sess *session.Session, console *terminal.Console) {
	// master device files: screen writes echo, keyboard reads translate
	scrn := sess.ScreenFile()
	kybd := sess.KeyboardFile()
	scrn.WriteLine("PC-BASIC DEVICE CONSOLE")
	for {
		if err := scrn.Write("? ", true); err != nil {
			return
		}
		line, _, err := kybd.ReadLine()
		if err != nil {
			return
		}
		if err := scrn.WriteLine(line); err != nil {
			return
		}
	}
}
