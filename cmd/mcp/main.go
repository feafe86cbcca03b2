package main

import (
	"fmt"
	"os"
	"strconv"

	"mcp-host-info/internal/handlers"
	"mcp-host-info/internal/logger"
	"mcp-host-info/internal/middleware"
	"mcp-host-info/internal/tools"
	"mcp-host-info/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	logger.InitLogger()

	hostInfoTool := mcp.NewTool("get_host_info",
		mcp.WithDescription("Reports host hardware facts: CPU identification, instruction set extensions and physical memory"),
		mcp.WithString("random_string",
			mcp.Required(),
			mcp.Description("Dummy parameter for no-parameter tools"),
		),
	)

	mcpServer := server.NewMCPServer("mcp-host-info", "1.0.0")
	mcpServer.AddTool(hostInfoTool, tools.GetHostInfoHandler)

	port := os.Getenv("PORT")
	if port == "" {
		logger.Main.Info().Msg("Starting MCP server in stdio mode")
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Main.Fatal().
				Err(err).
				Msg("Error starting MCP server in stdio mode")
		}
		return
	}

	portInt, err := strconv.Atoi(port)
	if err != nil || portInt <= 0 {
		logger.Main.Fatal().
			Str("port", port).
			Msg("Invalid PORT value")
	}

	app := fiber.New(fiber.Config{
		AppName: "MCP Host Info Server",
	})

	app.Use(middleware.RequestLoggingMiddleware())
	app.Use(middleware.AuthMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS,DELETE",
		AllowHeaders:  "Content-Type,Mcp-Session-Id,Accept,Last-Event-Id,X-API-Key",
		ExposeHeaders: "Mcp-Session-Id",
	}))

	sessionManager := types.NewSessionManager()
	mcpHandler := handlers.NewFiberMCPHandler(mcpServer, sessionManager)
	mcpHandler.RegisterRoutes(app)

	addr := fmt.Sprintf(":%d", portInt)
	logger.Main.Info().
		Str("addr", addr).
		Msg("Starting Fiber server")

	if err = app.Listen(addr); err != nil {
		logger.Main.Fatal().
			Err(err).
			Str("addr", addr).
			Msg("Error starting Fiber server")
	}
}
