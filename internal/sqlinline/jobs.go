package sqlinline

const QLoadContentJob = `--sql 338921b9-1f4c-423b-a7d3-fce21e93b373
select id, coalesce(title, ''), coalesce(script_text, ''), analysis_json, status,
       coalesce(media_assets, '{}'::jsonb), created_at, updated_at
from content_jobs
where id = $1;
`

const QMarkProcessing = `--sql 3866c499-0ef7-4583-99a4-a9ec06134a82
update content_jobs
set status = $2, updated_at = now()
where id = $1
  and status = 'pending';
`

const QCommitMediaResult = `--sql c7bd8817-b571-4c5c-8068-51624d3e220e
update content_jobs
set media_url = $2,
    media_assets = $3,
    status = $4,
    updated_at = now()
where id = $1
  and status in ('pending', 'processing', 'media_complete', 'failed');
`
