package web

const tmplBase = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Scenario Viewer</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:Roboto,Helvetica,sans-serif;background:#fafafa;color:#333;font-size:14px;line-height:1.5}
body.dark{background:#121212;color:#e0e0e0}
a{color:#1976d2;text-decoration:none}
body.dark a{color:#90caf9}
header{display:flex;align-items:center;gap:16px;padding:8px 16px;background:#1976d2;color:#fff}
header h1{font-size:18px;font-weight:500;flex:1}
header button{background:none;border:1px solid #fff;color:#fff;border-radius:4px;padding:4px 10px;cursor:pointer}
main{display:grid;grid-template-columns:360px 1fr;gap:16px;padding:16px}
.panel{background:#fff;border:1px solid #e0e0e0;border-radius:6px;padding:12px;margin-bottom:16px}
body.dark .panel{background:#1e1e1e;border-color:#404040}
.panel h2{font-size:13px;font-weight:600;text-transform:uppercase;letter-spacing:.05em;color:#757575;margin-bottom:8px}
form.filters{display:flex;flex-direction:column;gap:8px}
.seq{padding:6px 0;border-bottom:1px solid #eee}
body.dark .seq{border-color:#333}
.seq.selected{font-weight:600}
.bar{display:flex;height:8px;margin-top:4px;border-radius:2px;overflow:hidden}
.bar a{display:block;height:100%}
.bar .present{background:#4caf50}
.bar .absent{background:#e0e0e0}
body.dark .bar .absent{background:#424242}
.frame img{max-width:100%;border-radius:4px}
.meta{display:grid;grid-template-columns:auto 1fr;gap:2px 12px;margin-top:8px}
.yes{color:#2e7d32}
.no{color:#c62828}
.error{color:#c62828}
.strip{overflow-x:auto;position:relative}
.track{position:relative;height:110px}
.thumb{position:absolute;top:20px}
.thumb img{display:block;border:2px solid transparent;border-radius:2px}
.thumb.present img{border-color:#4caf50}
.marker{position:absolute;top:0;font-size:10px;color:#757575}
.cursor{position:absolute;top:16px;bottom:0;width:2px;background:#f44336}
.legend td{padding:2px 8px}
.swatch{display:inline-block;width:10px;height:10px;border-radius:2px}
.popup{display:flex;flex-direction:column;align-items:center;gap:12px;padding:16px}
.popup .viewport{width:820px;height:620px;overflow:hidden;display:flex;align-items:center;justify-content:center;background:#000}
.popup .controls{display:flex;gap:8px;flex-wrap:wrap}
</style>
</head>
<body{{if .Dark}} class="dark"{{end}}>
{{end}}

{{define "foot"}}</body>
</html>
{{end}}
`

const tmplDashboard = `
{{define "dashboard"}}{{template "head" .}}
<header>
<h1>Driving Scenario Viewer</h1>
<form method="post" action="/theme">
<input type="hidden" name="session" value="{{.Session}}">
<input type="hidden" name="back" value="{{link .Params}}">
<button type="submit">{{if .Dark}}Light mode{{else}}Dark mode{{end}}</button>
</form>
</header>
<main>
<section>
<div class="panel">
<h2>Scenario</h2>
<form class="filters" method="get" action="/">
{{if .Session}}<input type="hidden" name="session" value="{{.Session}}">{{end}}
<select name="scenario">
<option value="">Select a scenario</option>
{{range .Scenarios}}<option value="{{.ID}}"{{if eq .ID $.Scenario.ID}} selected{{end}}>{{.Name}}</option>
{{end}}</select>
<label><input type="radio" name="mode" value="all"{{if eq .Mode "all"}} checked{{end}}> All sequences</label>
<label><input type="radio" name="mode" value="present"{{if eq .Mode "present"}} checked{{end}}> Only with scenario</label>
<input type="search" name="q" value="{{.Query}}" placeholder="Filter sequences">
<button type="submit">Apply</button>
</form>
</div>

{{if .Scenario.ID}}
<div class="panel">
<h2>Sequences ({{len .Sequences}})</h2>
{{range $row := .Sequences}}
<div class="seq{{if $row.Selected}} selected{{end}}">
<a href="{{link $.Params "sequence" $row.Sequence.ID "frame" "" "zoom" ""}}">{{$row.Sequence.Name}}</a>
<span>{{count $row.Frames}} frames{{if $row.Present}}, {{$row.Percentage}}% {{$.Scenario.Name}}{{end}}</span>
<div class="bar">{{range $row.Segments}}<a class="{{if .HasScenario}}present{{else}}absent{{end}}" style="width:{{width .Width}}" title="{{.Tooltip}}" href="{{link $.Params "sequence" $row.Sequence.ID "frame" (itoa .Midpoint)}}"></a>{{end}}</div>
</div>
{{else}}
<p>No sequences match.</p>
{{end}}
</div>
{{end}}

<div class="panel">
<h2>Scenario statistics</h2>
<p>{{count .Stats.TotalFrames}} frames in {{.Stats.TotalSequences}} sequences</p>
{{if .Stats.Scenarios}}
<img src="{{.ChartURL}}" width="300" height="300" alt="Scenario distribution">
<table class="legend">
{{range .Stats.Scenarios}}<tr><td><span class="swatch" style="background:{{.Color}}"></span> {{.Name}}</td><td>{{count .FrameCount}}</td><td>{{pct .Percentage}}</td><td>{{.SequenceCount}} seq</td></tr>
{{end}}</table>
{{else}}
<p>No scenario data.</p>
{{end}}
</div>
</section>

<section>
{{if .Sequence}}
<div class="panel frame">
<h2>{{.Sequence.Name}}</h2>
<form method="get" action="/">
{{range $k, $v := .Params}}{{if ne $k "frame"}}<input type="hidden" name="{{$k}}" value="{{index $v 0}}">{{end}}{{end}}
<label>Frame (1-{{count .MaxFrames}}) <input type="text" name="frame" value="{{.FrameInput}}" inputmode="numeric"></label>
<button type="submit">Show</button>
</form>
{{if .FrameError}}
<p class="error">{{.FrameError}} <a href="{{link .Params "frame" .FrameInput}}">Retry</a></p>
{{end}}
{{with .Frame}}
<a href="/popup?sequence={{$.Sequence.ID}}&scenario={{$.Scenario.ID}}&frame={{.FrameNumber}}&session={{$.Session}}"><img src="{{.ImagePath}}" alt="Frame {{.FrameNumber}}"></a>
<div class="meta">
<span>Frame</span><span>{{count .FrameNumber}}</span>
<span>Time</span><span>{{.Timestamp}}</span>
<span>{{$.Scenario.Name}}</span><span class="{{if .ScenarioPresence}}yes{{else}}no{{end}}">{{if .ScenarioPresence}}Present{{else}}Absent{{end}}</span>
<span>Confidence</span><span>{{confidence .Confidence}}</span>
</div>
<p>
{{if $.Nav.Prev}}<a href="{{link $.Params "frame" (itoa $.Nav.Prev)}}">&larr; Previous</a>{{end}}
{{if $.Nav.Next}}<a href="{{link $.Params "frame" (itoa $.Nav.Next)}}">Next &rarr;</a>{{end}}
</p>
{{end}}
</div>

{{with .Timeline}}
<div class="panel">
<h2>Timeline: {{$.Layout.FrameCount}} sampled frames of {{count .TotalFrames}}</h2>
<p>
{{if $.Layout.CanZoomOut}}<a href="{{link $.Params "zoom" (zoomStep $.Layout.Zoom -1)}}">Zoom out</a>{{end}}
<span>{{$.Layout.Zoom}}x</span>
{{if $.Layout.CanZoomIn}}<a href="{{link $.Params "zoom" (zoomStep $.Layout.Zoom 1)}}">Zoom in</a>{{end}}
</p>
<div class="strip">
<div class="track" style="width:{{px $.Layout.Width}}">
{{range $.Layout.Markers}}<span class="marker" style="left:{{px .Position}}">{{.Timestamp}}</span>{{end}}
{{range $i, $f := .Frames}}<a class="thumb{{if $f.ScenarioPresence}} present{{end}}" style="left:{{px ($.Layout.Slot $i)}};width:{{px $.Layout.FrameWidth}}" title="Frame {{$f.FrameNumber}} {{$f.Timestamp}}" href="{{link $.Params "frame" (itoa $f.FrameNumber)}}"><img src="{{$f.ThumbnailURL}}" width="{{$.Layout.FrameWidth}}" alt="Frame {{$f.FrameNumber}}"></a>{{end}}
{{if $.Cursor}}<span class="cursor" style="left:{{px $.Cursor}}"></span>{{end}}
</div>
</div>
</div>
{{end}}
{{else}}
<div class="panel"><p>{{if .Scenario.ID}}Select a sequence to view frames.{{else}}Select a scenario to begin.{{end}}</p></div>
{{end}}
</section>
</main>
{{template "foot"}}{{end}}
`

const tmplPopup = `
{{define "popup"}}{{template "head" .}}
<div class="popup">
<p><a href="{{.Back}}">Close</a> &middot; Frame {{count .Frame.FrameNumber}} of {{.Frame.SequenceName}} &middot; {{.Frame.Timestamp}}</p>
<div class="viewport"><img src="{{.Frame.ImagePath}}" alt="Frame {{.Frame.FrameNumber}}" style="transform:{{.Transform}}"></div>
<div class="controls">
<a href="{{index .Links "zoomout"}}">&minus;</a>
<span>{{.Zoom}}x</span>
<a href="{{index .Links "zoomin"}}">+</a>
<a href="{{index .Links "resetzoom"}}">1:1</a>
<a href="{{index .Links "rotateleft"}}">&#8634;</a>
<span>{{.Rotation}}&deg;</span>
<a href="{{index .Links "rotateright"}}">&#8635;</a>
<a href="{{index .Links "reset"}}">Reset</a>
{{if .CanPan}}
<a href="{{index .Links "panleft"}}">&larr;</a>
<a href="{{index .Links "panup"}}">&uarr;</a>
<a href="{{index .Links "pandown"}}">&darr;</a>
<a href="{{index .Links "panright"}}">&rarr;</a>
{{end}}
<a href="{{.Frame.ImagePath}}" download="{{.Download}}">Download</a>
</div>
</div>
{{template "foot"}}{{end}}
`
