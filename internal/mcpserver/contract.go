package mcpserver

// PostFormatContract describes the Markdown post format read by the
// filesystem content store.
const PostFormatContract = `# Aidea:Med Post Format Contract

Every blog post is one Markdown file (` + "`" + `.md` + "`" + ` or ` + "`" + `.mdx` + "`" + `) under the content directory.

## Structure

` + "```" + `markdown
---
title: 牙醫診所 SEO 完整指南          # REQUIRED unless the body starts with a "# " heading
slug: dental-seo-guide              # OPTIONAL – defaults to the slugified title
summary: 一句話摘要                   # OPTIONAL – alias: excerpt
publishedAt: 2024-05-01             # REQUIRED for the CMS; files fall back to mtime. Alias: date
updatedAt: 2024-05-10               # OPTIONAL
coverImage: /images/blog/seo.jpg    # OPTIONAL – defaults to the site cover
category: 醫療行銷                    # OPTIONAL – must be in the configured vocabulary
tags: [SEO, 牙醫]                    # OPTIONAL – list or comma-separated string
author:                             # OPTIONAL – a plain name or a mapping
  name: 王小明
  title: 資深行銷顧問
readTime: 5                         # OPTIONAL – computed from the body when absent
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Front matter fences** must be the first thing in the file.
2. **Slugs** are unique. When two files resolve to the same slug the
   first file in path order wins and the other is reported by ` + "`" + `aidea check` + "`" + `.
3. **Dates** use ISO-8601 (` + "`" + `2024-05-01` + "`" + ` or ` + "`" + `2024-05-01T09:00:00+08:00` + "`" + `).
4. **Categories** outside the vocabulary are dropped with a warning.
5. **Images** are referenced by absolute site paths under ` + "`" + `/images/` + "`" + `.

## Semantic blocks

Two HTML blocks in the body feed the JSON-LD graph:

- ` + "`" + `<section class="faq-section">` + "`" + ` with ` + "`" + `.faq-item` + "`" + ` children, each holding an
  ` + "`" + `h3` + "`" + ` question and a ` + "`" + `p` + "`" + ` answer, becomes a FAQPage.
- An element with class ` + "`" + `step-guide` + "`" + ` holding an ` + "`" + `h2` + "`" + ` name, an intro ` + "`" + `p` + "`" + ` and
  ` + "`" + `.step` + "`" + ` children (` + "`" + `h3` + "`" + ` name, ` + "`" + `p` + "`" + ` text) becomes a HowTo; each step counts
  15 minutes.
`
