package live

import "html/template"

type indexData struct {
	ID  string
	SVG template.HTML
}

// safeSVG marks markup produced by the svg package as trusted HTML. The
// encoder escapes every attribute and text node.
func safeSVG(markup []byte) template.HTML {
	return template.HTML(markup) //nolint:gosec // escaped by encoding/xml
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>gauge {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
#controls { margin-top: 1em; }
</style>
</head>
<body>
<div id="gauge">{{.SVG}}</div>
<form id="controls">
<input id="value" type="number" step="any" autofocus>
<button type="submit">Set</button>
<span id="status"></span>
</form>
<script>
(function() {
  var id = {{.ID}};
  var status = document.getElementById("status");
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");

  ws.onmessage = function(ev) {
    var msg = JSON.parse(ev.data);
    switch (msg.type) {
    case "scene":
      id = msg.data.id;
      document.getElementById("gauge").innerHTML = msg.data.svg;
      break;
    case "frame":
      var needle = document.getElementById("needle-" + id);
      if (needle) needle.setAttribute("transform", msg.data.transform);
      var units = document.querySelector("#unitLabels-" + id + " text");
      if (units) units.textContent = msg.data.text;
      break;
    case "error":
      status.textContent = msg.data.error;
      break;
    }
  };
  ws.onclose = function() { status.textContent = "disconnected"; };

  document.getElementById("controls").onsubmit = function(ev) {
    ev.preventDefault();
    var v = parseFloat(document.getElementById("value").value);
    if (isNaN(v)) return;
    status.textContent = "";
    ws.send(JSON.stringify({type: "set_value", data: {value: v}}));
  };
})();
</script>
</body>
</html>
`))
