package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// Templates are parsed at init time to fail fast on template errors.
var (
	compiledTemplate         *template.Template
	compiledExplorerTemplate *template.Template
)

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
	compiledExplorerTemplate = template.Must(template.New("explorer").Parse(explorerTemplate))
}

// cytoscapeScriptTag loads Cytoscape.js from the CDN.
const cytoscapeScriptTag = `<script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>`

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", "grid", or "concentric"
	Title  string // Page title
}

// DefaultHTMLOptions returns default HTML generation options.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "concentric",
		Title:  "Paper Network",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid", "concentric"}

// templateData holds data for the HTML templates.
type templateData struct {
	ScriptTag template.HTML
	GraphJSON template.JS
	Layout    string
	Title     string
}

// GenerateHTML generates a self-contained HTML page for one ego graph.
func GenerateHTML(graph *Graph, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(), nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		ScriptTag: template.HTML(cytoscapeScriptTag),
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		Title:     pageTitle(opts),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ExplorerHTML generates the interactive explorer page. The page talks to the
// server over a websocket at /ws and renders whatever view the server sends.
func ExplorerHTML(opts HTMLOptions) (string, error) {
	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}

	data := templateData{
		ScriptTag: template.HTML(cytoscapeScriptTag),
		Layout:    layoutToCytoscape(opts.Layout),
		Title:     pageTitle(opts),
	}

	var buf bytes.Buffer
	if err := compiledExplorerTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ValidateLayout checks if the layout option is valid.
func ValidateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid", "concentric":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, grid, or concentric", layout)
	}
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	case "force":
		return "cose"
	default:
		return "concentric"
	}
}

func pageTitle(opts HTMLOptions) string {
	if opts.Title == "" {
		return DefaultHTMLOptions().Title
	}
	return opts.Title
}

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML() string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Paper Network - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No paper selected</h2>
    <p>Select a paper to see the graph.</p>
  </div>
</body>
</html>`
}

// sharedStyle is the Cytoscape.js style sheet for ego graphs.
const sharedStyle = `[
          {
            selector: 'node[role="center"]',
            style: {
              'background-color': '#1f77b4',
              'width': 'mapData(size, 0, 10, 10, 40)',
              'height': 'mapData(size, 0, 10, 10, 40)'
            }
          },
          {
            selector: 'node[role="neighbor"]',
            style: {
              'background-color': '#ff7f0e',
              'width': 'mapData(size, 0, 10, 10, 40)',
              'height': 'mapData(size, 0, 10, 10, 40)'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'target-arrow-color': '#95A5A6',
              'target-arrow-shape': 'triangle',
              'arrow-scale': 0.6,
              'curve-style': 'unbundled-bezier',
              'control-point-distances': 20,
              'width': 1.5
            }
          }
        ]`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    #cy {
      width: 100%;
      height: 100vh;
      background: white;
    }
    #tooltip {
      position: absolute;
      display: none;
      left: 10px;
      top: 10px;
      background: black;
      color: white;
      border-radius: 4px;
      padding: 4px 12px;
      font-size: 13px;
      max-width: 400px;
      z-index: 10;
    }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: ` + sharedStyle + `,
        layout: {
          name: "{{.Layout}}",
          animate: false,
          concentric: function(node) { return node.data('role') === 'center' ? 2 : 1; },
          levelWidth: function() { return 1; }
        }
      });

      const tooltip = document.getElementById('tooltip');
      cy.on('mouseover', 'node', function(evt) {
        tooltip.textContent = evt.target.data('label');
        tooltip.style.display = 'block';
      });
      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });
    })();
  </script>
</body>
</html>`

const explorerTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  {{.ScriptTag}}
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0 auto;
      padding: 16px;
      max-width: 960px;
      background: #f5f5f5;
      color: #333;
    }
    #search { position: relative; margin-bottom: 16px; }
    #search input { width: 100%; padding: 8px; box-sizing: border-box; }
    #results {
      position: absolute;
      z-index: 10;
      width: 100%;
      max-height: 240px;
      overflow-y: auto;
      margin: 4px 0 0;
      padding: 0;
      list-style: none;
      background: white;
      border: 1px solid #ccc;
      display: none;
    }
    #results li { padding: 8px; cursor: pointer; }
    #results li:hover { background: #eee; }
    #popular { width: 100%; padding: 8px; margin-bottom: 16px; }
    #status { font-size: 13px; color: #888; margin-bottom: 8px; }
    #graph { position: relative; }
    #cy { width: 100%; height: 65vh; background: white; }
    #placeholder { padding: 32px; text-align: center; color: #666; }
    #tooltip {
      position: absolute;
      display: none;
      left: 10px;
      top: 10px;
      background: black;
      color: white;
      border-radius: 4px;
      padding: 4px 12px;
      font-size: 13px;
      z-index: 10;
    }
  </style>
</head>
<body>
  <h2>{{.Title}}</h2>
  <div id="status"></div>
  <div id="search">
    <input id="term" type="text" placeholder="Search papers..." autocomplete="off">
    <ul id="results"></ul>
  </div>
  <select id="popular"><option value="" disabled selected>Or select a popular paper...</option></select>
  <div id="graph">
    <div id="placeholder">Select a paper to see the graph.</div>
    <div id="cy"></div>
    <div id="tooltip"></div>
  </div>
  <script>
    (function() {
      const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
      const ws = new WebSocket(proto + location.host + '/ws');
      const term = document.getElementById('term');
      const results = document.getElementById('results');
      const popular = document.getElementById('popular');
      const status = document.getElementById('status');
      const placeholder = document.getElementById('placeholder');
      const tooltip = document.getElementById('tooltip');
      let popularLoaded = false;
      let blurTimer = null;

      function send(evt) {
        if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(evt));
      }

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: [],
        style: ` + sharedStyle + `,
        userZoomingEnabled: false,
        userPanningEnabled: false
      });

      cy.on('mouseover', 'node', function(evt) { send({type: 'node_hover', id: evt.target.data('paperId')}); });
      cy.on('mouseout', 'node', function() { send({type: 'node_hover', id: null}); });
      cy.on('tap', 'node', function(evt) { send({type: 'node_click', id: evt.target.data('paperId')}); });

      term.addEventListener('input', function() { send({type: 'search_input', term: term.value}); });
      term.addEventListener('focus', function() { send({type: 'focus'}); });
      term.addEventListener('blur', function() {
        blurTimer = setTimeout(function() { send({type: 'blur_after_delay'}); }, 150);
      });
      term.addEventListener('keydown', function(e) {
        if (e.key === 'Enter') { e.preventDefault(); send({type: 'submit'}); }
      });
      popular.addEventListener('change', function() {
        send({type: 'pick', id: parseInt(popular.value, 10)});
      });
      document.addEventListener('mousedown', function(e) {
        if (!document.getElementById('search').contains(e.target)) send({type: 'click_outside'});
      });

      function renderResults(view) {
        results.innerHTML = '';
        (view.state.results || []).forEach(function(r) {
          const li = document.createElement('li');
          li.textContent = r.title || ('Untitled (' + r.int_id + ')');
          li.addEventListener('mousedown', function(e) {
            e.preventDefault();
            if (blurTimer) clearTimeout(blurTimer);
            send({type: 'item_activated', id: r.int_id});
          });
          results.appendChild(li);
        });
        results.style.display = view.state.dropdown_visible ? 'block' : 'none';
      }

      function renderPopular(view) {
        if (popularLoaded || !view.popular || view.popular.length === 0) return;
        view.popular.forEach(function(p) {
          const opt = document.createElement('option');
          opt.value = p.int_id;
          opt.textContent = p.title;
          popular.appendChild(opt);
        });
        popularLoaded = true;
      }

      function renderGraph(view) {
        const empty = !view.graph || view.graph.nodes.length === 0;
        placeholder.style.display = empty ? 'block' : 'none';
        cy.elements().remove();
        if (empty) return;
        cy.add(view.elements);
        cy.layout({
          name: "{{.Layout}}",
          animate: false,
          concentric: function(node) { return node.data('role') === 'center' ? 2 : 1; },
          levelWidth: function() { return 1; }
        }).run();
        cy.fit(undefined, 40);
      }

      function renderHover(view) {
        const id = view.state.hovered_id;
        if (id === null || id === undefined || !view.graph) {
          tooltip.style.display = 'none';
          return;
        }
        const node = view.graph.nodes.find(function(n) { return n.id === id; });
        if (!node) { tooltip.style.display = 'none'; return; }
        tooltip.textContent = node.label;
        tooltip.style.display = 'block';
      }

      let lastGraph = null;
      ws.onmessage = function(msg) {
        const view = JSON.parse(msg.data);
        status.textContent = view.error ? ('Data unavailable: ' + view.error) : (view.status === 'ready' ? '' : 'Loading graph data...');
        renderPopular(view);
        if (term.value !== view.state.search_term && document.activeElement !== term) term.value = view.state.search_term;
        if (view.state.selected_id === null) popular.value = '';
        renderResults(view);
        const graphKey = JSON.stringify(view.graph);
        if (graphKey !== lastGraph) { renderGraph(view); lastGraph = graphKey; }
        renderHover(view);
      };
      ws.onclose = function() { status.textContent = 'Disconnected'; };
    })();
  </script>
</body>
</html>`
