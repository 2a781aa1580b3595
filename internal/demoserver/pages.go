package demoserver

// PageVersion represents a specific revision of a page.
type PageVersion struct {
	HTML        string
	ContentType string
}

// PageDefinition holds all revisions of a single page.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getTallPage(),
		getProbePage(),
		getSlowPage(),
		getGrowingPage(),
		getMetaPage(),
	}
}

// ===== HOME PAGE =====
//
// Two visibly different revisions so captures of v1 and v2 produce a
// meaningful source diff.
func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Home page with two revisions for diffing",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Home</title>
    <script src="/static/app.js"></script>
</head>
<body>
    <h1>Webshot Demo Site</h1>
    <nav class="main-nav">
        <a href="/">Home</a> |
        <a href="/tall">Tall</a> |
        <a href="/probe">Probe</a> |
        <a href="/slow">Slow</a> |
        <a href="/growing">Growing</a> |
        <a href="/meta">Meta</a>
    </nav>
    <p class="banner">Monday Edition</p>
    <p>A fixed-size page for plain viewport captures.</p>
</body>
</html>`,
				ContentType: "text/html",
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Home</title>
    <script src="/static/app.js"></script>
</head>
<body>
    <h1>Webshot Demo Site</h1>
    <nav class="main-nav">
        <a href="/">Home</a> |
        <a href="/tall">Tall</a> |
        <a href="/probe">Probe</a> |
        <a href="/slow">Slow</a> |
        <a href="/growing">Growing</a> |
        <a href="/meta">Meta</a>
    </nav>
    <p class="banner">Tuesday Edition</p>
    <p>A fixed-size page for plain viewport captures.</p>
    <section class="news">
        <h2>What changed overnight</h2>
        <p>This section only exists in revision two.</p>
    </section>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}

// ===== TALL PAGE =====
//
// Content far taller than any sane viewport, for exercising full-page
// capture and the content height probe.
func getTallPage() PageDefinition {
	return PageDefinition{
		Path:        "/tall",
		Description: "4000px of content for full-page captures",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Tall</title>
    <style>
        .block { height: 1000px; border-bottom: 2px dashed #888; }
        .block:nth-child(odd) { background: #f4f4f4; }
    </style>
</head>
<body style="margin:0">
    <div class="block"><h1>Section 1 of 4</h1></div>
    <div class="block"><h1>Section 2 of 4</h1></div>
    <div class="block"><h1>Section 3 of 4</h1></div>
    <div class="block"><h1>Section 4 of 4 - the bottom</h1></div>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}

// ===== PROBE PAGE =====
//
// The body claims 900px while an absolutely positioned element ends at
// 2000px, so the six content height measurements disagree and only their
// maximum covers the whole page.
func getProbePage() PageDefinition {
	return PageDefinition{
		Path:        "/probe",
		Description: "Height measurements disagree; max is 2000px",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Probe</title>
    <style>
        body { margin: 0; height: 900px; position: relative; background: #f9f9f9; }
        .floater { position: absolute; top: 1800px; height: 200px; width: 100%; background: #fde8e8; }
    </style>
</head>
<body>
    <h1>Height probe fixture</h1>
    <p>Scroll height, offset height and client height all disagree here.</p>
    <div class="floater"><h2>Bottom of the floater, 2000px down</h2></div>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}

// ===== SLOW PAGE =====
//
// Renders a placeholder first, then swaps in the real content after two
// seconds. Captures without delaySeconds get the placeholder.
func getSlowPage() PageDefinition {
	return PageDefinition{
		Path:        "/slow",
		Description: "Content appears two seconds after load",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Slow</title>
    <script>
        setTimeout(function () {
            document.getElementById('content').innerHTML =
                '<h1>Late content</h1><p>You waited long enough.</p>';
        }, 2000);
    </script>
</head>
<body>
    <div id="content">
        <h1>Loading...</h1>
        <p>The real content arrives in two seconds.</p>
    </div>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}

// ===== GROWING PAGE =====
//
// Appends rows after load, so the content height measured after a delay
// differs from the height at load time.
func getGrowingPage() PageDefinition {
	return PageDefinition{
		Path:        "/growing",
		Description: "Grows by 1500px one second after load",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Webshot Demo - Growing</title>
    <script>
        setTimeout(function () {
            var extra = document.createElement('div');
            extra.style.height = '1500px';
            extra.style.background = '#e8f0fe';
            extra.innerHTML = '<h2>Late rows</h2>';
            document.body.appendChild(extra);
        }, 1000);
    </script>
</head>
<body style="margin:0">
    <div style="height:600px"><h1>Initial rows</h1></div>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}

// ===== META PAGE =====
//
// Carries a descriptive title for exercising title extraction from
// archived page source.
func getMetaPage() PageDefinition {
	return PageDefinition{
		Path:        "/meta",
		Description: "Title and meta tags for extraction",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Quarterly Report - Webshot Demo</title>
    <meta name="description" content="A page whose title ends up in capture history.">
    <meta property="og:title" content="Quarterly Report">
</head>
<body>
    <h1>Quarterly Report</h1>
    <p>The interesting part is in the head.</p>
</body>
</html>`,
				ContentType: "text/html",
			},
		},
	}
}
