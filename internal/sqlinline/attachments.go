package sqlinline

const QSelectAttachmentByURL = `--sql 51499d6d-a1ae-4210-978e-5f536ab7da91
select id, width, height
from attachments
where source_url = $1::text
limit 1;
`
