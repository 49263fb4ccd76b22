package handler

const pageTpl = `<!doctype html>
<html lang="zh-CN">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
{{if .Loading}}<meta http-equiv="refresh" content="1" />{{end}}
<title>视频源</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;max-width:1200px;margin:0 auto;padding:1rem 2.5rem;color:#1f2937}
h1{font-size:1.875rem;margin:0}
h2{font-size:1.25rem;margin:0 0 1rem}
.sub{color:#6b7280;margin-top:.5rem}
form{display:inline}
.section{margin-bottom:2rem}
.categories{display:flex;flex-wrap:wrap;gap:.5rem}
.categories button{padding:.5rem 1.25rem;border:0;border-radius:9999px;background:#e5e7eb;color:#374151;cursor:pointer}
.sources{display:grid;grid-template-columns:repeat(auto-fill,minmax(10rem,1fr));gap:.75rem}
.sources button{width:100%;padding:1rem;border:0;border-radius:.75rem;background:#e5e7eb;color:#374151;cursor:pointer;display:flex;flex-direction:column;align-items:center}
.sources .detail{font-size:.75rem;opacity:.8;overflow:hidden;text-overflow:ellipsis;white-space:nowrap;max-width:100%}
button.active{background:#3b82f6;color:#fff;font-weight:500}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(11rem,1fr));gap:3.5rem 2rem}
.poster{aspect-ratio:2/3;width:100%;border-radius:.5rem;object-fit:cover;background:#e5e7eb}
.skeleton .poster,.skeleton .line{animation:pulse 1.5s infinite}
.skeleton .line{height:1rem;margin-top:.5rem;border-radius:.25rem;background:#e5e7eb}
.card .title{margin-top:.5rem;font-weight:600}
.card small{color:#6b7280}
.empty{text-align:center;color:#6b7280;padding:4rem 0}
@keyframes pulse{50%{opacity:.5}}
</style>

<div class="section">
  <h1>视频源</h1>
  <p class="sub">选择视频源和影视类型查看相关视频</p>
</div>

<div class="section categories" id="categories">
  {{range .Categories}}
  <form method="post" action="/select/category">
    <button type="submit" name="key" value="{{.Key}}"{{if .Active}} class="active"{{end}}>{{.Label}}</button>
  </form>
  {{end}}
</div>

<div class="section">
  <h2>视频源选项</h2>
  <div class="sources" id="sources">
    {{range .Sources}}
    <form method="post" action="/select/source">
      <button type="submit" name="key" value="{{.Key}}"{{if .Active}} class="active"{{end}}>
        <span class="name">{{.Name}}</span>
        {{if .Detail}}<span class="detail">{{.Detail}}</span>{{end}}
      </button>
    </form>
    {{end}}
  </div>
</div>

{{with .Videos}}
<div class="section" id="videos" data-state="{{.State}}">
  <h2>{{.SourceName}} - {{.Category}}视频</h2>
  {{if eq .State "loading"}}
  <div class="grid">
    {{range placeholders .Placeholders}}
    <div class="skeleton"><div class="poster"></div><div class="line"></div></div>
    {{end}}
  </div>
  {{else if eq .State "results"}}
  <div class="grid">
    {{range .Cards}}
    <div class="card" data-key="{{.Key}}" data-id="{{.ID}}" data-source="{{.Source}}" data-query="{{.Query}}"
         data-from="{{.From}}" data-type="{{.Type}}" data-episodes="{{.Episodes}}">
      {{if .Poster}}<img class="poster" src="{{.Poster}}" alt="{{.Title}}" loading="lazy" />{{else}}<div class="poster"></div>{{end}}
      <div class="title">{{.Title}}</div>
      <small>{{.SourceName}}{{if .Year}} · {{.Year}}{{end}}{{if eq .Type "tv"}} · {{.Episodes}}集{{end}}</small>
    </div>
    {{end}}
  </div>
  {{else}}
  <div class="empty"><p>{{.EmptyText}}</p></div>
  {{end}}
</div>
{{end}}
</html>
`
