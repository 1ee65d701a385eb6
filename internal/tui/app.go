// Package tui is the daemon's terminal console. It shows discovered
// printers, the connection state and the server log, and takes commands for
// scanning, connecting and test printing.
package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/happytime/posprint/internal/printer"
	"github.com/rivo/tview"
)

// App is the console application.
type App struct {
	App     *tview.Application
	service *printer.Service
	addr    string

	flex *tview.Flex

	printersList *tview.List
	statusBox    *tview.TextView
	logsArea     *tview.TextView
	commandInput *tview.InputField

	logs      []string
	maxLogs   int
	startTime time.Time
}

// NewApp creates the console bound to a printer service.
func NewApp(service *printer.Service, addr string) *App {
	t := &App{
		App:       tview.NewApplication(),
		service:   service,
		addr:      addr,
		logs:      make([]string, 0),
		maxLogs:   100,
		startTime: time.Now(),
	}

	t.setupUI()

	service.Subscribe(func(ev printer.Event) {
		t.App.QueueUpdateDraw(func() {
			t.refreshAll()
		})
	})

	return t
}

func (t *App) setupUI() {
	t.printersList = tview.NewList()
	t.printersList.SetBorder(true)
	t.printersList.SetTitle("Printers")

	t.statusBox = tview.NewTextView()
	t.statusBox.SetBorder(true)
	t.statusBox.SetTitle("Status")
	t.statusBox.SetDynamicColors(true)

	t.logsArea = tview.NewTextView()
	t.logsArea.SetBorder(true)
	t.logsArea.SetTitle("Logs")
	t.logsArea.SetDynamicColors(true)
	t.logsArea.SetScrollable(true)
	t.logsArea.SetChangedFunc(func() {
		t.App.Draw()
	})

	t.commandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0).
		SetPlaceholder("Type a command (e.g., 'help')").
		SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				t.executeCommand(t.commandInput.GetText())
				t.commandInput.SetText("")
			}
		})

	topRow := tview.NewFlex().
		AddItem(t.printersList, 0, 2, false).
		AddItem(t.statusBox, 0, 1, false)

	bottom := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.logsArea, 0, 3, false).
		AddItem(t.commandInput, 1, 0, true)

	t.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, false).
		AddItem(bottom, 0, 1, false)

	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.commandInput.HasFocus() {
			if event.Key() == tcell.KeyEsc {
				t.App.SetFocus(t.printersList)
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			t.App.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ':':
				t.App.SetFocus(t.commandInput)
				return nil
			case 'q':
				t.App.Stop()
				return nil
			}
		}
		return event
	})

	t.App.SetRoot(t.flex, true)
}

// Run starts the console.
func (t *App) Run() error {
	t.refreshAll()
	go t.refreshTicker()

	t.AddLog("posprint daemon starting...", "info")

	return t.App.Run()
}

func (t *App) refreshTicker() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		t.App.QueueUpdateDraw(func() {
			t.refreshStatus()
		})
	}
}

func (t *App) refreshAll() {
	t.refreshPrinters()
	t.refreshStatus()
}

func (t *App) refreshPrinters() {
	t.printersList.Clear()

	devices := t.service.Devices()
	if len(devices) == 0 {
		t.printersList.AddItem("No printers found", "Run 'scan' to discover devices", 0, nil)
		return
	}

	for i, d := range devices {
		marker := "  "
		if d.Connected {
			marker = "* "
		}
		label := fmt.Sprintf("%s%d. %s", marker, i+1, d.Name)
		t.printersList.AddItem(label, d.Address, 0, nil)
	}
}

func (t *App) refreshStatus() {
	uptime := time.Since(t.startTime)
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60

	device := "-"
	if d := t.service.ConnectedDevice(); d != nil {
		device = d.Name
	}

	st := t.service.Settings()
	status := fmt.Sprintf(`State: %s
Printer: %s

Uptime: %dh %dm
API: %s
Paper: %dmm, %d copies`,
		t.service.State(), device, hours, minutes, t.addr, st.PaperWidth, st.Copies)

	t.statusBox.SetText(status)
}

func (t *App) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])

	t.AddLog(fmt.Sprintf("> %s", cmd), "command")

	ctx := context.Background()

	switch command {
	case "scan", "s":
		t.AddLog("Scanning for printers...", "info")
		go func() {
			devices, err := t.service.Scan(ctx)
			t.App.QueueUpdateDraw(func() {
				if err != nil {
					t.AddLog(fmt.Sprintf("Scan failed: %v", err), "error")
					return
				}
				t.AddLog(fmt.Sprintf("Found %d device(s)", len(devices)), "info")
				t.refreshPrinters()
			})
		}()

	case "connect", "c":
		if len(parts) < 2 {
			t.AddLog("Usage: connect <number>", "error")
			return
		}
		idx, err := strconv.Atoi(parts[1])
		devices := t.service.Devices()
		if err != nil || idx < 1 || idx > len(devices) {
			t.AddLog("Invalid printer number", "error")
			return
		}
		target := devices[idx-1]
		go func() {
			if err := t.service.Connect(ctx, target.ID); err != nil {
				t.queueLog(fmt.Sprintf("Connect failed: %v", err), "error")
				return
			}
			t.queueLog(fmt.Sprintf("Connected to %s", target.Name), "info")
		}()

	case "disconnect", "d":
		go func() {
			if err := t.service.Disconnect(ctx); err != nil {
				t.queueLog(fmt.Sprintf("Disconnect failed: %v", err), "error")
				return
			}
			t.queueLog("Disconnected", "info")
		}()

	case "test", "t":
		t.AddLog("Sending test print...", "info")
		go func() {
			if ok, err := t.service.TestPrint(ctx); !ok {
				t.queueLog(fmt.Sprintf("Test print failed: %v", err), "error")
				return
			}
			t.queueLog("Test print sent", "info")
		}()

	case "help", "h", "?":
		t.showHelp()

	case "clear":
		t.logs = make([]string, 0)
		t.logsArea.Clear()

	case "refresh":
		t.refreshAll()

	case "quit", "q", "exit":
		t.App.Stop()

	default:
		t.AddLog(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", command), "error")
	}
}

func (t *App) showHelp() {
	help := []string{
		"Available commands:",
		"  scan, s              - Scan for printers",
		"  connect <n>, c <n>   - Connect to printer number n",
		"  disconnect, d        - Disconnect the active printer",
		"  test, t              - Print a test receipt",
		"  clear                - Clear logs",
		"  refresh              - Refresh all panels",
		"  help, h, ?           - Show this help",
		"  quit, q              - Exit application",
	}
	t.AddLog(strings.Join(help, "\n"), "info")
}

// AddLog adds a log entry. Call from the UI goroutine.
func (t *App) AddLog(message string, level string) {
	var color string

	switch level {
	case "error":
		color = "[red]"
	case "warning":
		color = "[yellow]"
	case "command":
		color = "[cyan]"
	default:
		color = "[white]"
	}

	timeStr := time.Now().Format("15:04:05")
	logEntry := fmt.Sprintf("%s[%s] %s[white]\n", color, timeStr, message)

	t.logs = append(t.logs, logEntry)
	if len(t.logs) > t.maxLogs {
		t.logs = t.logs[len(t.logs)-t.maxLogs:]
	}

	t.logsArea.Clear()
	for _, entry := range t.logs {
		fmt.Fprint(t.logsArea, entry)
	}
	t.logsArea.ScrollToEnd()
}

// queueLog is AddLog for goroutines outside the UI loop.
func (t *App) queueLog(message string, level string) {
	t.App.QueueUpdateDraw(func() {
		t.AddLog(message, level)
	})
}

// LogWriter adapts the logs panel into an io.Writer for the log package.
func (t *App) LogWriter() io.Writer {
	return &logWriter{app: t}
}

type logWriter struct {
	app *App
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message != "" {
		w.app.queueLog(message, "info")
	}
	return len(p), nil
}
