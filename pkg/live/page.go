package live

import (
	"html/template"
	"net/http"
)

type pageData struct {
	Title string
	Types []string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>` + stylesheet + `</style>
</head>
<body>
<main class="demo">
  <h1>{{.Title}}</h1>
  <input id="hermes-message" type="text" placeholder="Message" autocomplete="off">
  <div class="buttons">
  {{- range .Types}}
    <button type="button" data-notify="{{.}}">{{.}}</button>
  {{- end}}
  </div>
</main>
<div id="hermes-root"></div>
<script>` + clientScript + `</script>
</body>
</html>
`))

// stylesheet styles the default toast classes. Enter and exit use keyframe
// animations so each phase ends with exactly one animationend.
const stylesheet = `
body { font: 15px/1.4 system-ui, sans-serif; margin: 0; background: #f4f4f5; }
.demo { max-width: 32rem; margin: 4rem auto; }
.demo input { width: 100%; box-sizing: border-box; padding: .5rem; margin-bottom: .75rem; }
.buttons button { margin-right: .5rem; padding: .4rem .9rem; text-transform: capitalize; }
.toasts { position: fixed; top: 1rem; right: 1rem; width: 20rem; margin: 0; padding: 0; list-style: none; }
.toast { margin-bottom: .5rem; padding: .75rem 1rem; border-radius: .375rem; color: #fff; box-shadow: 0 2px 6px rgba(0,0,0,.2); }
.toast-success { background: #15803d; }
.toast-error { background: #b91c1c; }
.toast-warning { background: #b45309; }
.toast-info { background: #1d4ed8; }
.toast-in { animation: hermes-in .3s ease-out both; }
.toast-out { animation: hermes-out .3s ease-in both; }
@keyframes hermes-in { from { opacity: 0; transform: translateX(1.5rem); } to { opacity: 1; transform: none; } }
@keyframes hermes-out { from { opacity: 1; transform: none; } to { opacity: 0; transform: translateX(1.5rem); } }
`

// clientScript applies patches and reports end signals. It holds no
// notification logic of its own.
const clientScript = `
(function () {
  var root = document.getElementById("hermes-root");
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(proto + "//" + location.host + "/ws");

  function byId(id) {
    if (id === root.dataset.nid) return root;
    return root.querySelector('[data-nid="' + id + '"]');
  }

  function fragment(html) {
    var t = document.createElement("template");
    t.innerHTML = html;
    return t.content.firstChild;
  }

  function apply(p) {
    var el;
    switch (p.op) {
    case "insert":
      el = byId(p.parent);
      if (el) el.insertBefore(fragment(p.html), p.before ? byId(p.before) : null);
      return;
    case "remove":
      el = byId(p.id);
      if (el) el.remove();
      return;
    }
    el = byId(p.id);
    if (!el) return;
    switch (p.op) {
    case "addClass": el.classList.add.apply(el.classList, p.classes); break;
    case "removeClass": el.classList.remove.apply(el.classList, p.classes); break;
    case "text": el.textContent = p.value || ""; break;
    case "attr": el.setAttribute(p.key, p.value || ""); break;
    }
  }

  ws.onmessage = function (e) {
    var m = JSON.parse(e.data);
    if (m.t === "init") {
      root.dataset.nid = m.root;
      root.innerHTML = m.html || "";
    } else if (m.t === "patches") {
      m.patches.forEach(apply);
    } else if (m.t === "error") {
      console.warn("hermes", m.code, m.message);
    }
  };

  ["animationend", "webkitAnimationEnd", "transitionend", "webkitTransitionEnd"].forEach(function (name) {
    root.addEventListener(name, function (e) {
      var id = e.target.dataset && e.target.dataset.nid;
      if (id && ws.readyState === WebSocket.OPEN) {
        ws.send(JSON.stringify({ t: "end", id: id, event: e.type }));
      }
    }, true);
  });

  document.querySelectorAll("[data-notify]").forEach(function (b) {
    b.addEventListener("click", function () {
      var input = document.getElementById("hermes-message");
      ws.send(JSON.stringify({ t: "notify", type: b.dataset.notify, message: input.value || b.dataset.notify }));
    });
  });
})();
`

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, pageData{Title: s.config.Title, Types: s.types}); err != nil {
		s.logger.Error("page render error", "error", err)
	}
}
