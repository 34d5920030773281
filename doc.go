// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
The glyphpipeline package contains tools and functions for cutting scanned
character tables into images of their individual glyphs, ready for training
OCR or for building a glyph index of a document. Several of the tools are
useful standalone; each gives information on what it does and how it works
with the '-h' flag, for example:
  segmenttable -h

Presuming you have the go tools installed, you can install all of them with
this command:
  go install rescribe.xyz/glyphpipeline/cmd/...

Input

Each table is a binary image, where every pixel is either ink or
background, such as the mask layers extracted from a DjVu document with
ddjvu. PNG, TIFF, BMP, GIF and JPEG are all understood, as long as the
image has only two colours. Greyscale scans can be binarised first with
the '-binarise' flag, which uses Sauvola binarisation.

The table number is taken from the last number in the file name, so
m12.tiff is table 12.

Segmentation

A table is cut into lines using a projection profile of its rows: each
run of rows containing ink is a line, and runs of blank rows separate
them. Each line is then cut into glyphs, using one of several strategies:

  projection  runs of columns containing ink, the default for clean tables
  gaps        the same, but splitting only at real gaps between chunks
  pathcut     like gaps, but chunks which are much wider than expected are
              split along a path of background pixels, for touching glyphs
  auto        pathcut if the line seems to have touching glyphs, otherwise
              projection

Glyph boxes which overlap each other, as can happen when a margin is set,
are shrunk apart. A line with no glyphs at all is skipped and reported,
and does not take up a line number.

Naming

Glyphs are numbered from 1, lines top to bottom and glyphs left to right
within each line, and saved as t001_l002g013.png for table 1, line 2,
glyph 13. Pieces of a split glyph get a suffix, such as t001_l002g013-1.png.
Each table's output directory also contains:

  stream.csv        the list of glyphs with their original numbers and
                    boxes, used to reload a table for corrections
  <doc>.csv         the index, linking each glyph to its place in the
                    DjVu document
  corrections.log   a line for each join, split or deletion made, and
                    a renumber line giving the final numbers of split
                    pieces
  renumber.txt      the number of lines and glyphs in the table
  lines.png         a graph of the number of glyphs on each line
  proof.pdf         the table with every glyph box outlined and labelled
  <table>-<time>.log  the segmentation log

After a batch, report.json in the output directory lists every warning and
failure, and a summary is printed.

Corrections

Segmentation is never perfect. Two glyphs which were wrongly cut apart can
be joined, one glyph holding two touching glyphs can be split, and specks
of noise can be deleted. These can be done with the "correct" tool, from a
file of commands, or with the "glyphreview" tool, which shows the glyphs of
a line and lets you pick them. After any correction the table is renumbered,
so the numbers stay dense, and the index is rewritten.

Line chunks

The chunkline, splitchunk and joinchunks tools work on single line images
instead of whole tables, cutting a line into chunks at its gaps
(line_01.png, line_02.png...), splitting a chunk of touching glyphs, and
joining chunks back together (line_07+08.png). The renumber tool gives
a directory of glyph images dense numbers, which also converts older
names like m12_R_lines_3_chunk_07.png.

Other tools

  lstables      lists the tables in an output directory, and any locked ones
  proofsheet    makes one proof pdf covering several tables
  profilegraph  graphs the row or column profile of an image, to help pick
                thresholds
  binarise      binarises a greyscale image on its own

Settings

Settings can be changed in ~/.config/glyphpipeline/settings, one per line,
like:
  margin 1
  strategy auto
  pad 2
Command line flags override the settings file.
*/
package glyphpipeline
