package demoserver

// PageVersion holds the markup for one version of a page.
type PageVersion struct {
	HTML string
}

// PageDefinition holds all versions of a single page. Version 1 carries a
// deliberate accessibility defect and the highest version repairs it, so
// auditing across a version bump produces a diff with resolved findings.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions. Interactive elements carry
// an explicit tabindex throughout so repaired versions come back clean under
// the keyboard check.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getGalleryPage(),
		getArticlePage(),
		getPricingPage(),
		getSearchPage(),
		getToolsPage(),
		getDashboardPage(),
		getWelcomePage(),
	}
}

// ===== HOME PAGE =====
func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Accessible index linking every demo page, so a site audit reaches them all",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Home</title>
</head>
<body>
    <h1>Acme Documentation Portal</h1>
    <nav class="main-nav">
        <a href="/gallery" tabindex="0">Gallery</a> |
        <a href="/article" tabindex="0">Article</a> |
        <a href="/pricing" tabindex="0">Pricing</a> |
        <a href="/search" tabindex="0">Search</a> |
        <a href="/tools" tabindex="0">Tools</a> |
        <a href="/dashboard" tabindex="0">Dashboard</a> |
        <a href="/welcome" tabindex="0">Welcome</a>
    </nav>
    <p>Each section above ships a defective version and a repaired one.</p>
</body>
</html>`,
			},
		},
	}
}

// ===== GALLERY PAGE =====
func getGalleryPage() PageDefinition {
	return PageDefinition{
		Path:        "/gallery",
		Description: "Image gallery; v1 ships photos without alt text",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Gallery v1</title>
</head>
<body>
    <h1>Release Gallery</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <img src="/static/team.png">
    <img src="/static/launch.png">
    <img src="/static/divider.png" alt="">
    <p>Snapshots from the latest release party.</p>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Gallery v2</title>
</head>
<body>
    <h1>Release Gallery</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <img src="/static/team.png" alt="The team gathered around the release board">
    <img src="/static/launch.png" alt="Confetti falling over the launch party">
    <img src="/static/divider.png" alt="">
    <p>Snapshots from the latest release party.</p>
</body>
</html>`,
			},
		},
	}
}

// ===== ARTICLE PAGE =====
func getArticlePage() PageDefinition {
	return PageDefinition{
		Path:        "/article",
		Description: "Blog article; v1 fakes its headings with styled paragraphs",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Article v1</title>
</head>
<body>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <p style="font-size: 28px; font-weight: bold">Shipping the new audit pipeline</p>
    <p>The crawler now resolves relative links before queueing them, so
    sites behind redirects no longer produce duplicate visits.</p>
    <p style="font-size: 20px; font-weight: bold">What changed</p>
    <p>Capture and analysis run as separate stages, and every run is kept
    in history for later comparison.</p>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Article v2</title>
</head>
<body>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <h1>Shipping the new audit pipeline</h1>
    <p>The crawler now resolves relative links before queueing them, so
    sites behind redirects no longer produce duplicate visits.</p>
    <h2>What changed</h2>
    <p>Capture and analysis run as separate stages, and every run is kept
    in history for later comparison.</p>
</body>
</html>`,
			},
		},
	}
}

// ===== PRICING PAGE =====
func getPricingPage() PageDefinition {
	return PageDefinition{
		Path:        "/pricing",
		Description: "Pricing copy; v1 renders fine print in low-contrast gray",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Pricing v1</title>
</head>
<body>
    <h1>Pricing</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <p style="color: #9a9a9a">The starter tier includes five audits per day.</p>
    <p style="color: #b0b0b0">Contact sales for unlimited history retention.</p>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Pricing v2</title>
</head>
<body>
    <h1>Pricing</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <p style="color: #1a1a1a">The starter tier includes five audits per day.</p>
    <p style="color: #1a1a1a">Contact sales for unlimited history retention.</p>
</body>
</html>`,
			},
		},
	}
}

// ===== SEARCH PAGE =====
func getSearchPage() PageDefinition {
	return PageDefinition{
		Path:        "/search",
		Description: "Search form; v1 uses an invalid role and an icon button with no content",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Search v1</title>
</head>
<body>
    <h1>Search the docs</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <div role="searchbar">
        <input type="text" name="q" tabindex="0">
        <button type="submit" aria-label="Search" tabindex="0"></button>
    </div>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Search v2</title>
</head>
<body>
    <h1>Search the docs</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <form role="search">
        <input type="text" name="q" tabindex="0">
        <button type="submit" aria-label="Search" tabindex="0"><img src="/static/magnifier.svg" alt="Search"></button>
    </form>
</body>
</html>`,
			},
		},
	}
}

// ===== TOOLS PAGE =====
func getToolsPage() PageDefinition {
	return PageDefinition{
		Path:        "/tools",
		Description: "Export tools; v1 breaks keyboard access with a bad tabindex and an unreachable button",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Tools v1</title>
</head>
<body>
    <h1>Export tools</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <a href="/article" tabindex="-2">Archived articles</a>
    <button type="button">Export report</button>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Tools v2</title>
</head>
<body>
    <h1>Export tools</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <a href="/article" tabindex="0">Archived articles</a>
    <button type="button" tabindex="0">Export report</button>
</body>
</html>`,
			},
		},
	}
}

// ===== DASHBOARD PAGE =====
func getDashboardPage() PageDefinition {
	return PageDefinition{
		Path:        "/dashboard",
		Description: "Metrics dashboard; v1 fakes a button with a div and lays out data in a bare table",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Dashboard v1</title>
</head>
<body>
    <h1>Audit dashboard</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <div class="refresh" onclick="location.reload()">Refresh</div>
    <table>
        <tr><td>Pages audited</td><td>128</td></tr>
        <tr><td>Open findings</td><td>12</td></tr>
    </table>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Dashboard v2</title>
</head>
<body>
    <h1>Audit dashboard</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <button type="button" tabindex="0" onclick="location.reload()">Refresh</button>
    <table>
        <tr><th>Metric</th><th>Value</th></tr>
        <tr><td>Pages audited</td><td>128</td></tr>
        <tr><td>Open findings</td><td>12</td></tr>
    </table>
</body>
</html>`,
			},
		},
	}
}

// ===== WELCOME PAGE =====
func getWelcomePage() PageDefinition {
	return PageDefinition{
		Path:        "/welcome",
		Description: "Onboarding tour; v1 never declares the document language",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Acme Docs - Welcome v1</title>
</head>
<body>
    <h1>Welcome aboard</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <p>This short tour introduces the documentation portal.</p>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <title>Acme Docs - Welcome v2</title>
</head>
<body>
    <h1>Welcome aboard</h1>
    <nav><a href="/" tabindex="0">Home</a></nav>
    <p>This short tour introduces the documentation portal.</p>
</body>
</html>`,
			},
		},
	}
}
