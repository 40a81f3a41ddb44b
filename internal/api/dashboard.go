package api

const dashboardHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Facebook Extractor Dashboard</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header, .stat-card, .posts-section { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .header { margin-bottom: 20px; }
        .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 20px; margin-bottom: 20px; }
        .stat-number { font-size: 2em; font-weight: bold; color: #1877f2; }
        .stat-label { color: #666; margin-top: 5px; }
        .post-item { border-bottom: 1px solid #eee; padding: 15px 0; }
        .post-shape { font-weight: bold; color: #1877f2; }
        .post-text { margin: 10px 0; color: #333; }
        .post-stats { display: flex; gap: 20px; color: #666; font-size: 0.9em; }
        .error { background: #fee; color: #c33; padding: 15px; border-radius: 4px; margin: 10px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Facebook Extractor Dashboard</h1>
            <p>Extracted posts and sieve coverage</p>
        </div>
        <div class="stats-grid" id="stats-grid"></div>
        <div class="posts-section">
            <h2>Top Posts</h2>
            <div id="posts-container"></div>
        </div>
    </div>
    <script>
        function card(value, label) {
            return '<div class="stat-card"><div class="stat-number">' + value + '</div><div class="stat-label">' + label + '</div></div>';
        }

        async function loadStats() {
            try {
                const data = await (await fetch('/api/stats')).json();
                if (!data.success) throw new Error(data.error);
                const s = data.data;
                document.getElementById('stats-grid').innerHTML =
                    card(s.total_posts || 0, 'Posts') +
                    card(s.video_posts || 0, 'Video Posts') +
                    card(s.total_users || 0, 'Profiles') +
                    card(Math.round(s.average_reactions || 0), 'Average Reactions');
            } catch (error) {
                document.getElementById('stats-grid').innerHTML = '<div class="error">Failed to load statistics: ' + error.message + '</div>';
            }
        }

        async function loadPosts() {
            try {
                const data = await (await fetch('/api/posts?page_size=10')).json();
                if (!data.success) throw new Error(data.error);
                const posts = data.data.posts;
                document.getElementById('posts-container').innerHTML = posts.length === 0
                    ? '<p>No posts yet. Run the extractor first.</p>'
                    : posts.map(p =>
                        '<div class="post-item"><div class="post-shape">' + p.shape + ' via ' + p.sieve + '</div>' +
                        '<div class="post-text">' + (p.text || '').substring(0, 200) + '</div>' +
                        '<div class="post-stats"><span>comments ' + (p.num_comments ?? '-') + '</span>' +
                        '<span>shares ' + (p.num_shares ?? '-') + '</span>' +
                        '<span>views ' + (p.num_views ?? '-') + '</span>' +
                        '<span>' + new Date(p.created_at).toLocaleDateString() + '</span></div></div>'
                    ).join('');
            } catch (error) {
                document.getElementById('posts-container').innerHTML = '<div class="error">Failed to load posts: ' + error.message + '</div>';
            }
        }

        document.addEventListener('DOMContentLoaded', function() {
            loadStats();
            loadPosts();
        });
    </script>
</body>
</html>
`
