package cms

const postProjection = `{
  _id,
  title,
  "slug": slug.current,
  publishedAt,
  updatedAt,
  excerpt,
  "mainImage": mainImage{"url": asset->url, alt, caption},
  "categories": categories[]->{title, "slug": slug.current, description},
  "author": author->{name, title, credentials, expertise, "image": image.asset->url, "bio": pt::text(bio)},
  tags,
  "content": coalesce(content[]{..., "asset": asset->{url}}, content),
  readingTime,
  views,
  "gallery": gallery[]{"url": asset->url, alt, caption}
}`

const listPostsQuery = `*[_type == "post" && status == "published"] | order(publishedAt desc) ` + postProjection

const postsBySlugQuery = `*[_type == "post" && status == "published" && lower(slug.current) == $slug] | order(publishedAt desc) ` + postProjection

const categoriesQuery = `*[_type == "category"] | order(title asc) {title, "slug": slug.current, description}`
