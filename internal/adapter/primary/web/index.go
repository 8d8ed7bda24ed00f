package web

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Caffeine</title>
    <style>
        body { font-family: sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .active { border-left: 6px solid #2e9d4a; }
        .paused { border-left: 6px solid #999; }
        .scheduled { border-left: 6px solid #e0a000; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; }
        button:hover { background: #0056b3; }
        input, select { padding: 8px; margin: 5px; }
        label { display: inline-block; width: 150px; }
        .days label { width: auto; margin-right: 8px; }
    </style>
</head>
<body>
    <h1>Caffeine</h1>
    <div class="info" id="status">Loading...</div>
    <button id="pause" onclick="togglePause()">Pause</button>

    <h2>Settings</h2>
    <div><label>Schedule:</label><input type="checkbox" id="scheduleEnabled"></div>
    <div><label>Start:</label><input type="time" id="startTime"></div>
    <div><label>End:</label><input type="time" id="endTime"></div>
    <div class="days" id="days"></div>
    <div>
        <label>Ping interval:</label>
        <select id="interval">
            <option value="30">30 seconds</option>
            <option value="60">60 seconds</option>
            <option value="120">120 seconds</option>
        </select>
    </div>
    <div><label>Keep display on:</label><input type="checkbox" id="keepDisplayOn"></div>
    <div><label>Start with system:</label><input type="checkbox" id="startWithSystem"></div>
    <div style="margin-top: 20px;"><button onclick="save()">Save</button></div>
    <script>
        const dayNames = ['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'];
        const daysEl = document.getElementById('days');
        dayNames.forEach(d => {
            daysEl.innerHTML += '<label><input type="checkbox" value="' + d + '">' + d.slice(0, 3) + '</label>';
        });

        async function loadStatus() {
            const res = await fetch('/api/status');
            const st = await res.json();
            const el = document.getElementById('status');
            el.className = 'info ' + st.icon;
            el.textContent = st.text;
            document.getElementById('pause').textContent = st.paused ? 'Resume' : 'Pause';
        }

        async function loadSettings() {
            const res = await fetch('/api/settings');
            const s = await res.json();
            document.getElementById('scheduleEnabled').checked = s.scheduleEnabled;
            document.getElementById('startTime').value = s.startTime;
            document.getElementById('endTime').value = s.endTime;
            document.getElementById('interval').value = s.pingIntervalSeconds;
            document.getElementById('keepDisplayOn').checked = s.keepDisplayOn;
            document.getElementById('startWithSystem').checked = s.startWithSystem;
            daysEl.querySelectorAll('input').forEach(cb => { cb.checked = s.activeDays.includes(cb.value); });
        }

        async function togglePause() {
            await fetch('/api/pause', {method: 'POST'});
            await loadStatus();
        }

        async function save() {
            const payload = {
                scheduleEnabled: document.getElementById('scheduleEnabled').checked,
                startTime: document.getElementById('startTime').value,
                endTime: document.getElementById('endTime').value,
                activeDays: [...daysEl.querySelectorAll('input:checked')].map(cb => cb.value),
                pingIntervalSeconds: parseInt(document.getElementById('interval').value),
                keepDisplayOn: document.getElementById('keepDisplayOn').checked,
                startWithSystem: document.getElementById('startWithSystem').checked
            };
            const res = await fetch('/api/settings', {
                method: 'PUT',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify(payload)
            });
            if (!res.ok) {
                alert(await res.text());
            }
            await loadSettings();
            await loadStatus();
        }

        loadSettings();
        loadStatus();
        setInterval(loadStatus, 3000);
    </script>
</body>
</html>`
