package sqlinline

const QSelectCacheValue = `--sql a5e64ae1-7805-4c45-a6f0-4744c70db73e
select value
from edge_cache
where cache_key = $1::text
  and expires_at > now()
limit 1;
`

const QUpsertCacheValue = `--sql 076fb0d1-9aa7-4c0e-a2ad-e6780e65c8c1
insert into edge_cache(cache_key, cache_group, value, expires_at)
values ($1::text, $2::text, $3::text, now() + $4::interval)
on conflict (cache_key) do update
set cache_group = excluded.cache_group,
    value = excluded.value,
    expires_at = excluded.expires_at;
`

const QDeleteCacheGroup = `--sql f15e49dc-8a83-41a2-acf7-2970d1f01bbb
delete from edge_cache
where cache_group = $1::text
   or $1::text = '';
`

const QDeleteExpiredCache = `--sql f6cde4fa-0ada-4ac2-91d1-9efd858554d9
delete from edge_cache
where expires_at <= now();
`
