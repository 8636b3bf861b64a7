package monitor

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"proofok-api/metrics"
)

// maxLogTail bounds how much of the log file /logs returns.
const maxLogTail = 256 * 1024

func RegisterMonitorPage(r gin.IRoutes) {
	r.GET("/monitor", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(monitorPage))
	})
}

// RegisterLogsRoute serves the tail of the backend log file.
func RegisterLogsRoute(r gin.IRoutes, logPath string) {
	r.GET("/logs", func(c *gin.Context) {
		logData, err := readTail(logPath, maxLogTail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", logData)
	})
}

// RegisterMetricsRoute exposes the Prometheus registry.
func RegisterMetricsRoute(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func readTail(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		if _, err := f.Seek(info.Size()-limit, io.SeekStart); err != nil {
			return nil, err
		}
	}
	data, err := io.ReadAll(f)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return data, nil
}

const monitorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>ProofOK Monitor</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { background: #10131a; color: #e0e0e0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; padding: 20px; }
    .container { max-width: 1100px; margin: 0 auto; }
    h1 { font-size: 2rem; margin-bottom: 1.5rem; color: #a5b4fc; }
    .card { background: rgba(255, 255, 255, 0.04); border: 1px solid rgba(255, 255, 255, 0.1); border-radius: 14px; padding: 1.25rem; margin-bottom: 1.5rem; }
    .row { display: flex; justify-content: space-between; align-items: center; margin-bottom: 1rem; }
    #logs { background: rgba(0, 0, 0, 0.35); padding: 1rem; border-radius: 10px; max-height: 520px; overflow-y: auto; white-space: pre-wrap; font-family: 'Consolas', 'Courier New', monospace; font-size: 0.85rem; line-height: 1.5; }
    button { padding: 0.6rem 1.2rem; background: #4f46e5; color: #ffffff; border: none; border-radius: 8px; cursor: pointer; font-weight: 600; }
    button.paused { background: #db2777; }
    a { color: #a5b4fc; }
  </style>
</head>
<body>
  <div class="container">
    <h1>ProofOK Monitor</h1>
    <div class="card" id="status">Status: checking...</div>
    <div class="card">
      <div class="row">
        <strong>Backend log</strong>
        <span><a id="metricsLink" href="#">metrics</a> <button onclick="toggleLive()" id="toggleBtn">Pause Live Logs</button></span>
      </div>
      <pre id="logs">Loading logs...</pre>
    </div>
  </div>
  <script>
    const token = new URLSearchParams(window.location.search).get('token') || '';
    const logsElement = document.getElementById('logs');
    const statusElement = document.getElementById('status');
    const toggleBtn = document.getElementById('toggleBtn');
    document.getElementById('metricsLink').href = '/metrics?token=' + encodeURIComponent(token);
    let liveLogs = true;

    function fetchStatus() {
      fetch('/healthz')
        .then(res => res.json())
        .then(data => {
          statusElement.textContent = 'Status: ' + (data.ok ? 'online' : 'offline') + ' (' + data.version + ', ' + data.time + ')';
        })
        .catch(() => { statusElement.textContent = 'Status: offline'; });
    }

    function fetchLogs() {
      if (!liveLogs) return;
      fetch('/logs', { headers: { 'X-Monitor-Token': token } })
        .then(res => res.text())
        .then(data => {
          logsElement.textContent = data;
          logsElement.scrollTop = logsElement.scrollHeight;
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      toggleBtn.textContent = liveLogs ? 'Pause Live Logs' : 'Resume Live Logs';
      toggleBtn.classList.toggle('paused', !liveLogs);
    }

    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`
